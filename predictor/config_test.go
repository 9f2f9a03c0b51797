package predictor_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/branchstress/predictor"
)

var _ = Describe("Config", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "predictor-config")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("should have valid defaults", func() {
		Expect(predictor.DefaultConfig().Validate()).To(Succeed())
	})

	It("should have valid presets", func() {
		Expect(predictor.PresetNames()).To(Equal([]string{"bimodal", "gshare", "tournament"}))
		for _, name := range predictor.PresetNames() {
			c, err := predictor.Preset(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Validate()).To(Succeed(), name)
			Expect(string(c.Kind)).To(Equal(name))
		}
	})

	It("should reject unknown presets", func() {
		_, err := predictor.Preset("perceptron")
		Expect(err).To(MatchError(ContainSubstring("unknown predictor")))
	})

	DescribeTable("Validate",
		func(mutate func(c *predictor.Config), msg string) {
			c := predictor.DefaultConfig()
			mutate(c)
			Expect(c.Validate()).To(MatchError(ContainSubstring(msg)))
		},
		Entry("bad kind", func(c *predictor.Config) { c.Kind = "tage" }, "kind"),
		Entry("bht not power of 2", func(c *predictor.Config) { c.BHTSize = 1000 }, "bht_size"),
		Entry("zero btb sets", func(c *predictor.Config) { c.BTBSets = 0 }, "btb_sets"),
		Entry("zero btb ways", func(c *predictor.Config) { c.BTBWays = 0 }, "btb_ways"),
		Entry("no history for gshare", func(c *predictor.Config) {
			c.Kind = predictor.KindGShare
			c.GlobalHistoryLength = 0
		}, "global_history_length"),
		Entry("zero penalty", func(c *predictor.Config) { c.MispredictPenalty = 0 }, "mispredict_penalty"),
	)

	It("should allow bimodal without history", func() {
		c, err := predictor.Preset("bimodal")
		Expect(err).NotTo(HaveOccurred())
		Expect(c.GlobalHistoryLength).To(BeZero())
		Expect(c.Validate()).To(Succeed())
	})

	It("should keep defaults for fields missing from JSON", func() {
		path := filepath.Join(tmpDir, "gshare.json")
		Expect(os.WriteFile(path, []byte(`{"kind": "gshare", "bht_size": 4096}`), 0644)).To(Succeed())

		c, err := predictor.LoadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Kind).To(Equal(predictor.KindGShare))
		Expect(c.BHTSize).To(Equal(uint32(4096)))
		Expect(c.BTBWays).To(Equal(4))
		Expect(c.MispredictPenalty).To(Equal(uint64(12)))
	})

	It("should load YAML", func() {
		path := filepath.Join(tmpDir, "small.yaml")
		yamlDoc := "kind: bimodal\nbht_size: 64\nbtb_sets: 8\nmispredict_penalty: 7\n"
		Expect(os.WriteFile(path, []byte(yamlDoc), 0644)).To(Succeed())

		c, err := predictor.LoadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Kind).To(Equal(predictor.KindBimodal))
		Expect(c.BHTSize).To(Equal(uint32(64)))
		Expect(c.BTBSets).To(Equal(8))
		Expect(c.MispredictPenalty).To(Equal(uint64(7)))
	})

	DescribeTable("SaveConfig round trip",
		func(name string) {
			path := filepath.Join(tmpDir, name)
			c := predictor.DefaultConfig()
			c.BHTSize = 256
			c.GlobalHistoryLength = 12

			Expect(c.SaveConfig(path)).To(Succeed())

			loaded, err := predictor.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(c))
		},
		Entry("json", "config.json"),
		Entry("yaml", "config.yml"),
	)

	It("should fail on a missing file", func() {
		_, err := predictor.LoadConfig(filepath.Join(tmpDir, "missing.json"))
		Expect(err).To(MatchError(ContainSubstring("failed to read")))
	})

	It("should fail on malformed content", func() {
		path := filepath.Join(tmpDir, "bad.json")
		Expect(os.WriteFile(path, []byte(`{"kind": `), 0644)).To(Succeed())

		_, err := predictor.LoadConfig(path)
		Expect(err).To(MatchError(ContainSubstring("failed to parse")))
	})

	It("should clone independently", func() {
		c := predictor.DefaultConfig()
		clone := c.Clone()
		clone.BHTSize = 2
		Expect(c.BHTSize).To(Equal(uint32(1024)))
	})
})
