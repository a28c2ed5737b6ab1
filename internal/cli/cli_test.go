package cli

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rcliao/spaced-review/internal/config"
	"github.com/rcliao/spaced-review/internal/model"
)

var _ = Describe("RootCmd", func() {
	It("registers every command", func() {
		names := []string{}
		for _, sub := range RootCmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements(
			"item", "deck", "review", "history", "today", "rank",
			"cleanup", "stats", "export", "import", "config",
		))
	})

	It("has the rank subcommands", func() {
		rank, _, err := RootCmd.Find([]string{"rank"})
		Expect(err).NotTo(HaveOccurred())
		names := []string{}
		for _, sub := range rank.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("show", "set", "top", "bottom", "apply", "deck"))
	})
})

var _ = Describe("daily limit flag", func() {
	It("is only read from the today command", func() {
		dir := GinkgoT().TempDir()
		db := filepath.Join(dir, "review.db")

		show, _, err := RootCmd.Find([]string{"rank", "show"})
		Expect(err).NotTo(HaveOccurred())
		Expect(show.Flags().Lookup("limit")).To(BeNil())

		RootCmd.SetArgs([]string{"rank", "show", "--top", "3", "--config-dir", dir, "--db", db})
		Expect(RootCmd.Execute()).To(Succeed())
		Expect(cfg.Review.DailyLimit).To(Equal(0))

		RootCmd.SetArgs([]string{"today", "--limit", "7", "--config-dir", dir, "--db", db})
		Expect(RootCmd.Execute()).To(Succeed())
		Expect(cfg.Review.DailyLimit).To(Equal(7))
	})
})

var _ = Describe("config command", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	run := func(args ...string) error {
		RootCmd.SetArgs(append(args, "--config-dir", dir))
		return RootCmd.Execute()
	}

	It("sets and reads back a value", func() {
		Expect(run("config", "set", "review.daily_limit", "25")).To(Succeed())

		cfger, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfger.GetTarget()).To(Equal(filepath.Join(dir, "config.toml")))
		value, err := cfger.GetConfigValue("review.daily_limit")
		Expect(err).NotTo(HaveOccurred())
		Expect(value).To(Equal("25"))

		Expect(run("config", "get", "review.daily_limit")).To(Succeed())
		Expect(run("config", "list")).To(Succeed())
	})

	It("rejects unknown keys", func() {
		Expect(run("config", "set", "review.nope", "1")).To(MatchError(ContainSubstring("unknown config key")))
		Expect(run("config", "get", "review.nope")).To(HaveOccurred())
	})

	It("rejects invalid values", func() {
		Expect(run("config", "set", "review.algorithm", "leitner")).To(HaveOccurred())
		Expect(run("config", "set", "review.daily_limit", "many")).To(HaveOccurred())
	})
})

var _ = Describe("renderToday", func() {
	It("lists due and new items per deck and the combined view", func() {
		spanish := model.NewDeckToday()
		spanish.DueIDs = []string{"hola"}
		spanish.NewIDs = []string{"adios"}
		spanish.Due, spanish.New = 1, 1
		verbs := model.NewDeckToday()
		verbs.Status = model.StatusFinished

		combined := model.NewDeckToday()
		combined.DueIDs = []string{"hola"}
		combined.NewIDs = []string{"adios"}
		combined.Due, combined.New = 1, 1

		out := renderToday(&model.Today{
			Decks:    []string{"spanish", "verbs"},
			Tags:     map[string]*model.DeckToday{"spanish": spanish, "verbs": verbs},
			Combined: combined,
		})
		Expect(out).To(ContainSubstring("spanish"))
		Expect(out).To(ContainSubstring("1 due, 1 new, 0 done"))
		Expect(out).To(ContainSubstring("hola"))
		Expect(out).To(ContainSubstring("finished"))
		Expect(out).To(ContainSubstring("all decks"))
	})

	It("omits the combined view for a single deck", func() {
		out := renderToday(&model.Today{
			Decks:    []string{"spanish"},
			Tags:     map[string]*model.DeckToday{"spanish": model.NewDeckToday()},
			Combined: model.NewDeckToday(),
		})
		Expect(out).NotTo(ContainSubstring("all decks"))
	})
})
