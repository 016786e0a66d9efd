package main

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	semnet "github.com/vilterp/semnet/pkg"
	"github.com/vilterp/semnet/pkg/scenario"
	"go.uber.org/zap"
)

func TestWorkload(t *testing.T) {
	catalog, err := scenario.LoadDir("../../scenarios")
	require.NoError(t, err)
	server := semnet.NewServer(catalog, semnet.DefaultConfig())

	scenarioName, workers, numRequests = "colors", 3, 50
	tally, err := runWorkload(context.Background(), server, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, int64(50), tally.sent)
	require.Equal(t, int64(0), tally.failed)

	total := int64(0)
	for _, counter := range tally.results {
		total += *counter
	}
	require.Equal(t, int64(50), total)
}

func TestGeneratorIsSeeded(t *testing.T) {
	desc := &semnet.Description{
		ScenarioSummary: semnet.ScenarioSummary{Name: "colors", Contexts: []string{"empty", "sky"}},
	}
	first := newGenerator(rand.New(rand.NewSource(7)), desc)
	second := newGenerator(rand.New(rand.NewSource(7)), desc)
	for idx := 0; idx < 10; idx++ {
		require.Equal(t, first.next(), second.next(), "case %d", idx)
	}
}
