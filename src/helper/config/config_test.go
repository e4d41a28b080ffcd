package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"casasapi/src/helper/config"
)

func setenv(name string, value string) {
	Expect(os.Setenv(name, value)).To(Succeed())
	DeferCleanup(os.Unsetenv, name)
}

func writeYAML(content string) string {
	path := filepath.Join(GinkgoT().TempDir(), "app.yaml")
	Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
	return path
}

var _ = Describe("Load", func() {
	It("uses the defaults when the file does not exist", func() {
		// ACT
		cfg, err := config.Load(filepath.Join(GinkgoT().TempDir(), "missing.yaml"))

		// ASSERT
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.App.Port).To(Equal(5000))
		Expect(cfg.Database.Table).To(Equal("propiedades"))
		Expect(cfg.Upload.MaxFileSize()).To(Equal(int64(10 * 1024 * 1024)))
		Expect(cfg.Upload.Timeout()).To(Equal(30 * time.Second))
		Expect(cfg.MapaEmbed.AllowedHosts).To(ContainElement("openstreetmap.org"))
		Expect(cfg.IsDevelopment()).To(BeFalse())
	})

	It("overlays the YAML file on the defaults", func() {
		// ARRANGE
		path := writeYAML(`
app:
  env: development
  port: 8080
upload:
  max_batch: 4
`)

		// ACT
		cfg, err := config.Load(path)

		// ASSERT
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.App.Port).To(Equal(8080))
		Expect(cfg.IsDevelopment()).To(BeTrue())
		Expect(cfg.Upload.MaxBatch).To(Equal(4))
		Expect(cfg.Upload.Folder).To(Equal("casas-ernestina"))
	})

	It("lets the environment override the file", func() {
		// ARRANGE
		path := writeYAML("app:\n  port: 8080\n")
		setenv("PORT", "9090")
		setenv("REDIS_HOSTS", "redis-a:6379, redis-b:6379")
		setenv("CLOUDINARY_CLOUD_NAME", "casas")

		// ACT
		cfg, err := config.Load(path)

		// ASSERT
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.App.Port).To(Equal(9090))
		Expect(cfg.Redis.Hosts).To(Equal([]string{"redis-a:6379", "redis-b:6379"}))
		Expect(cfg.Cloudinary.CloudName).To(Equal("casas"))
	})

	It("fails on malformed YAML", func() {
		// ARRANGE
		path := writeYAML("app: [port")

		// ACT
		_, err := config.Load(path)

		// ASSERT
		Expect(err).To(MatchError(ContainSubstring("failed to parse")))
	})
})
