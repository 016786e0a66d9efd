package main

import (
	"context"
	"math/rand"
	"os"
	"sort"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	semnet "github.com/vilterp/semnet/pkg"
	clog "github.com/vilterp/semnet/pkg/log"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	url          string
	scenarioName string
	workers      int
	numRequests  int
	seed         int64
)

var rootCmd = &cobra.Command{
	Use:   "semnet-workload",
	Short: "Send a stream of forcing requests to a server",
	Long: `Picks random contexts of a scenario and random assignments from its
variables' enum domains, and asks the server whether they force the goal.
All workers share one connection.`,
	Args: cobra.NoArgs,
	RunE: run,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&url, "url", "ws://localhost:9000/ws", "URL of the server to connect to")
	flags.StringVar(&scenarioName, "scenario", "lab1_university", "scenario to query")
	flags.IntVar(&workers, "workers", 4, "concurrent requests in flight")
	flags.IntVar(&numRequests, "requests", 1000, "total requests to send")
	flags.Int64Var(&seed, "seed", 1, "random seed")
}

type tally struct {
	sent    int64
	failed  int64
	results map[string]*int64
}

func newTally() *tally {
	t := &tally{results: map[string]*int64{}}
	for _, r := range []string{"true", "false", "unknown", "vacuous"} {
		t.results[r] = new(int64)
	}
	return t
}

func (t *tally) fields() []zap.Field {
	fields := []zap.Field{zap.Int64("sent", t.sent), zap.Int64("failed", t.failed)}
	for _, r := range []string{"true", "false", "unknown", "vacuous"} {
		fields = append(fields, zap.Int64(r, *t.results[r]))
	}
	return fields
}

// generator builds random forcing requests for one scenario.
type generator struct {
	rng      *rand.Rand
	scenario string
	contexts []string
	names    []string
	domains  map[string][]interface{}
}

func newGenerator(rng *rand.Rand, desc *semnet.Description) *generator {
	g := &generator{
		rng:      rng,
		scenario: desc.Name,
		contexts: desc.Contexts,
		domains:  map[string][]interface{}{},
	}
	for _, v := range desc.Variables {
		if len(v.Values) == 0 {
			continue
		}
		g.names = append(g.names, v.Name)
		for _, value := range v.Values {
			g.domains[v.Name] = append(g.domains[v.Name], value.Native())
		}
	}
	sort.Strings(g.names)
	return g
}

func (g *generator) next() *semnet.Request {
	req := &semnet.Request{Op: semnet.OpForces, Scenario: g.scenario}
	if len(g.contexts) > 0 {
		req.Context = g.contexts[g.rng.Intn(len(g.contexts))]
	}
	for _, name := range g.names {
		// leave about half the variables to the context
		if g.rng.Intn(2) == 0 {
			continue
		}
		if req.Assign == nil {
			req.Assign = map[string]interface{}{}
		}
		values := g.domains[name]
		req.Assign[name] = values[g.rng.Intn(len(values))]
	}
	return req
}

func runWorkload(ctx context.Context, caller semnet.Caller, logger *zap.Logger) (*tally, error) {
	desc := &semnet.Description{}
	if err := semnet.Call(ctx, caller, &semnet.Request{Op: semnet.OpDescribe, Scenario: scenarioName}, desc); err != nil {
		return nil, err
	}
	gen := newGenerator(rand.New(rand.NewSource(seed)), desc)
	logger.Info("starting workload",
		zap.String("scenario", scenarioName),
		zap.Int("workers", workers),
		zap.Int("requests", numRequests),
		zap.Strings("enumVariables", gen.names))

	t := newTally()
	reqs := make(chan *semnet.Request)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(reqs)
		for i := 0; i < numRequests; i++ {
			select {
			case reqs <- gen.next():
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for req := range reqs {
				report := &semnet.ForcesReport{}
				n := atomic.AddInt64(&t.sent, 1)
				if err := semnet.Call(gctx, caller, req, report); err != nil {
					atomic.AddInt64(&t.failed, 1)
					logger.Debug("request failed", zap.Error(err))
				} else if counter, ok := t.results[report.Result]; ok {
					atomic.AddInt64(counter, 1)
				}
				if n%500 == 0 {
					logger.Info("progress", zap.Int64("sent", n))
				}
			}
			return nil
		})
	}
	return t, g.Wait()
}

func run(_ *cobra.Command, _ []string) error {
	if err := clog.Init("info", true); err != nil {
		return err
	}
	defer clog.Sync()
	logger := clog.L()

	client, err := semnet.NewClient(url)
	if err != nil {
		return err
	}
	defer client.Close()

	start := time.Now()
	t, err := runWorkload(context.Background(), client, logger)
	if err != nil {
		return err
	}
	logger.Info("done", append(t.fields(), zap.Duration("elapsed", time.Since(start)))...)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
