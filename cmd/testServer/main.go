package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/assetnote/kites3/pkg/log"
	"github.com/assetnote/kites3/pkg/s3/s3test"
	"github.com/valyala/fasthttp"
)

func StatsFunc(s *s3test.Server, end <-chan bool) {
	lastRequest := time.Now()
	lastRequestCount := s.Requests()
	rpsPeak := float64(0)
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-end:
			fmt.Println("\nTerminating.")
			return
		case <-t.C:
			timeDiff := time.Since(lastRequest).Seconds()
			curRequestCount := s.Requests()
			requestCountDiff := curRequestCount - lastRequestCount
			rps := float64(requestCountDiff) / timeDiff
			if rps > rpsPeak {
				rpsPeak = rps
			}

			fmt.Printf("Total Requests: %d. Requests since last checkin: %d. RPS: %f. Peak: %f\t\t\t\t\r", curRequestCount, requestCountDiff, rps, rpsPeak)
			lastRequest = time.Now()
			lastRequestCount = curRequestCount
		}
	}
}

func parsePortRange(in string) (int, int, error) {
	parts := strings.Split(in, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid port range %q. format should be <int>-<int>", in)
	}
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("unable to parse port: %w", err)
	}
	end, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("unable to parse port: %w", err)
	}
	if end < start {
		return 0, 0, fmt.Errorf("invalid port range %q. end is before start", in)
	}
	return start, end, nil
}

func main() {
	var (
		portRange string
		buckets   string
		auth      string
	)
	flag.StringVar(&portRange, "p", "14000-14001", "Range of ports to start servers on, end exclusive")
	flag.StringVar(&buckets, "b", "", "Comma separated buckets to create on startup")
	flag.StringVar(&auth, "auth", "", "Only accept requests carrying this Authorization header")
	flag.Parse()

	startPort, endPort, err := parsePortRange(portRange)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid arguments")
	}

	// every port serves the same store
	s := s3test.NewServer(nil)
	s.Authorization = auth
	for _, b := range strings.Split(buckets, ",") {
		if b = strings.TrimSpace(b); b != "" {
			s.Store.CreateBucket(b, "", "")
		}
	}

	var wg sync.WaitGroup
	for i := startPort; i < endPort; i++ {
		wg.Add(1)
		go func(port int) {
			defer wg.Done()
			host := fmt.Sprintf(":%d", port)
			log.Debug().Str("host", host).Msg("starting server")
			log.Fatal().Err(fasthttp.ListenAndServe(host, s.Handler)).Msg("failed to start server")
		}(i)
	}
	log.Info().Int("start", startPort).Int("end", endPort).
		Str("virtualhost", "<bucket>."+s3test.BaseHost).Msg("serving fake s3")

	end := make(chan bool)
	go StatsFunc(s, end)
	wg.Wait()

	end <- true
	close(end)
}
