package servecmder_test

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gbytes"

	servecmder "github.com/papercomputeco/askstream/cmd/askstream/serve"
)

var _ = Describe("NewServeCmd", func() {
	It("registers the mock server flags", func() {
		cmd := servecmder.NewServeCmd()
		Expect(cmd.Use).To(Equal("serve"))

		listen := cmd.Flags().Lookup("listen")
		Expect(listen).NotTo(BeNil())
		Expect(listen.Shorthand).To(Equal("l"))
		Expect(listen.DefValue).To(Equal(":8088"))

		for _, name := range []string{"replay", "delay", "chunk-size"} {
			Expect(cmd.Flags().Lookup(name)).NotTo(BeNil(), name)
		}
	})

	It("fails before listening when the replay file is missing", func() {
		tmpDir := GinkgoT().TempDir()

		cmd := servecmder.NewServeCmd()
		cmd.Flags().String("config-dir", "", "")
		cmd.SetArgs([]string{
			"--config-dir", tmpDir,
			"--replay", filepath.Join(tmpDir, "missing.sse"),
		})
		cmd.SetOut(GinkgoWriter)
		cmd.SetErr(GinkgoWriter)

		err := cmd.Execute()
		Expect(err).To(MatchError(ContainSubstring("creating mock server")))
		Expect(err).To(MatchError(os.ErrNotExist))
	})

	It("serves until its context ends and logs startup once", func() {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		addr := l.Addr().String()
		Expect(l.Close()).To(Succeed())

		errOut := gbytes.NewBuffer()
		cmd := servecmder.NewServeCmd()
		cmd.Flags().String("config-dir", "", "")
		cmd.Flags().String("log-format", "", "")
		cmd.SetArgs([]string{
			"--config-dir", GinkgoT().TempDir(),
			"--listen", addr,
			"--log-format", "text",
		})
		cmd.SetOut(GinkgoWriter)
		cmd.SetErr(errOut)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := make(chan error, 1)
		go func() { done <- cmd.ExecuteContext(ctx) }()

		Eventually(func() error {
			conn, err := net.Dial("tcp", addr)
			if err == nil {
				conn.Close()
			}
			return err
		}).Should(Succeed())

		cancel()
		Eventually(done, "5s").Should(Receive(BeNil()))

		out := string(errOut.Contents())
		Expect(strings.Count(out, "starting mock server")).To(Equal(1))
		Expect(out).To(ContainSubstring("chunk_size=0"))
		Expect(out).To(ContainSubstring("shutting down mock server"))
	})

	It("has an api subcommand", func() {
		cmd := servecmder.NewServeCmd()
		sub, _, err := cmd.Find([]string{"api"})
		Expect(err).NotTo(HaveOccurred())
		Expect(sub.Name()).To(Equal("api"))
		Expect(sub.Flags().Lookup("listen").DefValue).To(Equal(":8089"))
	})

	It("rejects positional arguments", func() {
		cmd := servecmder.NewServeCmd()
		cmd.SetArgs([]string{"extra"})
		cmd.SetOut(GinkgoWriter)
		cmd.SetErr(GinkgoWriter)
		Expect(cmd.Execute()).NotTo(Succeed())
	})
})
