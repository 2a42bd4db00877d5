package sqlitepath

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ResolveSQLitePath", func() {
	var configDir string

	BeforeEach(func() {
		var err error
		configDir, err = os.MkdirTemp("", "askstream-home-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(configDir)
		})

		configDir, err = filepath.EvalSymlinks(configDir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("prefers the override", func() {
		path, err := ResolveSQLitePath(" /tmp/custom.db ", configDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/custom.db"))
	})

	It("defaults to answers.db in the config dir", func() {
		path, err := ResolveSQLitePath("", configDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(configDir, DefaultFileName)))
	})

	Describe("ResolveExisting", func() {
		It("fails when the archive has not been created", func() {
			_, err := ResolveExisting("", configDir)
			Expect(err).To(MatchError(ErrNotFound))
			Expect(err.Error()).To(ContainSubstring(configDir))
		})

		It("returns the archive once it exists", func() {
			dbPath := filepath.Join(configDir, DefaultFileName)
			Expect(os.WriteFile(dbPath, []byte("test"), 0o644)).To(Succeed())

			path, err := ResolveExisting("", configDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(path).To(Equal(dbPath))
		})
	})
})
