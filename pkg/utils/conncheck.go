package utils

import (
	"context"
	"fmt"
	"net"
	"regexp"
	"time"

	"github.com/mpapenbr/simlap-service-go/log"
)

var dbURLRegex = regexp.MustCompile(
	`^postgres(?:ql)?://(?:.*@)?(?P<host>[^:/?]+)(?::(?P<port>\d+))?(?:/.*)?$`)

// WaitForTCP tries to connect to addr until it succeeds or timeout is reached.
func WaitForTCP(ctx context.Context, addr string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	start := time.Now()
	log.Debug("wait for tcp connection",
		log.String("addr", addr),
		log.Duration("timeout", timeout))
	var d net.Dialer
	for {
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err == nil {
			//nolint:errcheck // only probing
			conn.Close()
			log.Debug("tcp connection successful",
				log.String("addr", addr),
				log.Duration("duration", time.Since(start)))
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s could not be reached after %v", addr, timeout)
		case <-time.After(200 * time.Millisecond):
		}
	}
}

// ExtractFromDBURL returns host:port of a postgres url, port defaults to 5432.
// An empty string is returned if url is not a postgres url.
func ExtractFromDBURL(url string) string {
	match := dbURLRegex.FindStringSubmatch(url)
	if match == nil {
		return ""
	}
	host := match[dbURLRegex.SubexpIndex("host")]
	port := match[dbURLRegex.SubexpIndex("port")]
	if port == "" {
		port = "5432"
	}
	return net.JoinHostPort(host, port)
}
