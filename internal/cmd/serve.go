package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"github.com/lite-xl/webshell/internal/logger"
	"github.com/lite-xl/webshell/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve [dir]",
	Short: "Serve a generated site for development",
	Long: `Serve a directory containing index.html and the program's Emscripten output.

Responses carry the cross-origin isolation headers that threaded Emscripten
builds need, and .wasm files are served as application/wasm.

Examples:
  webshell serve site
  webshell serve site --addr :3000 --qr`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

var (
	serveAddr    string
	serveQR      bool
	serveOrigins []string
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().BoolVar(&serveQR, "qr", false, "Print the page URL as a QR code")
	serveCmd.Flags().StringArrayVar(&serveOrigins, "cors", nil, "Allowed CORS origin (repeatable)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	if !logger.Enabled(logger.LevelDebug) {
		gin.SetMode(gin.ReleaseMode)
	}

	url := serveURL(serveAddr)
	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s at %s\n", dir, url)
	if serveQR {
		qr, err := qrcode.New(url, qrcode.Medium)
		if err != nil {
			return fmt.Errorf("generating QR code: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), qr.ToSmallString(false))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx, server.Config{
		SiteDir:        dir,
		Addr:           serveAddr,
		AllowedOrigins: serveOrigins,
		Version:        version,
	})
}

// serveURL returns a URL other devices on the network can open. A listen
// address without a host is reported with the first non-loopback IPv4
// address.
func serveURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr + "/"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = lanAddress()
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}

func lanAddress() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "localhost"
	}
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return "localhost"
}
