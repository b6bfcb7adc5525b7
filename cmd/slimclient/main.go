// Command slimclient is a minimal demonstration of the slimproto core:
// discover a server, connect, and report status on a timer. It has no
// audio pipeline: received messages are only logged. It exists
// only as a worked example of wiring Discoverer + Session together, in
// the spirit of the teacher's AppServerMain sample.
package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/squeezelite-go/slimproto/pkg/clock"
	"github.com/squeezelite-go/slimproto/pkg/discovery"
	"github.com/squeezelite-go/slimproto/pkg/metrics"
	"github.com/squeezelite-go/slimproto/pkg/session"
	"github.com/squeezelite-go/slimproto/pkg/slimproto"
)

func main() {
	var (
		host         = pflag.StringP("host", "h", "", "Server hostname or IP. Empty triggers UDP discovery.")
		port         = pflag.Uint16P("port", "p", session.DefaultPort, "Server TCP port.")
		discoverWait = pflag.Duration("discover-timeout", 30*time.Second, "How long to wait for UDP discovery.")
		statusEvery  = pflag.Duration("status-interval", 5*time.Second, "How often to send a STAT heartbeat.")
		metricsAddr  = pflag.String("metrics-addr", "", "If set, serve Prometheus metrics on this address.")
		debug        = pflag.Bool("debug", false, "Log every frame sent and received.")
		help         = pflag.Bool("help", false, "Display help text.")
	)
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - minimal SlimProto client demo\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	var mx *metrics.Collectors
	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		mx = metrics.New(reg)
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			log.Printf("metrics listening on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Printf("metrics server stopped: %v", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	endpoint, err := resolveEndpoint(ctx, *host, *port, *discoverWait, mx)
	if err != nil {
		log.Fatalf("could not locate server: %v", err)
	}
	log.Printf("connecting to %s", endpoint)

	sess := session.New(session.WithDebug(*debug), session.WithMetrics(mx))
	helo := buildHelo()
	if err := sess.Connect(ctx, endpoint, helo); err != nil {
		log.Fatalf("connect failed: %v", err)
	}
	defer sess.Disconnect(ctx, 0)

	go statusLoop(ctx, sess, *statusEvery)

	for {
		msg, err := sess.Receive(ctx)
		if err != nil {
			log.Printf("receive failed, exiting: %v", err)
			return
		}
		log.Printf("received %T: %+v", msg, msg)
	}
}

func resolveEndpoint(ctx context.Context, host string, port uint16, timeout time.Duration, mx *metrics.Collectors) (session.EndPoint, error) {
	if host != "" {
		return session.EndPoint{IP: mustResolve(host), Port: port}, nil
	}

	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	d := discovery.New(discovery.WithMetrics(mx))
	srv, err := d.Discover(dctx)
	if err != nil {
		return session.EndPoint{}, err
	}
	if srv == nil {
		return session.EndPoint{}, fmt.Errorf("no server found within %s", timeout)
	}
	return srv.EndPoint, nil
}

func mustResolve(host string) (ip net.IP) {
	addrs, err := net.LookupIP(host)
	if err != nil || len(addrs) == 0 {
		log.Fatalf("could not resolve %s: %v", host, err)
	}
	return addrs[0]
}

func buildHelo() slimproto.Helo {
	var uuid [16]byte
	_, _ = rand.Read(uuid[:])

	return slimproto.Helo{
		DeviceID:     12, // squeezelite-class device
		Revision:     0,
		UUID:         uuid,
		Language:     [2]byte{'e', 'n'},
		Capabilities: *slimproto.DefaultCapabilitySet(),
	}
}

func statusLoop(ctx context.Context, sess *session.Session, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	tracker := slimproto.NewTracker(clock.NewReal())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stat := tracker.CreateStatusMessage(slimproto.EventTimer)
			if err := sess.Send(ctx, stat); err != nil {
				log.Printf("status send failed: %v", err)
				return
			}
		}
	}
}
