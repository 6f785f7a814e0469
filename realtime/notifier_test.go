package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStandingsNotifierCollapsesBursts(t *testing.T) {
	notifier := NewStandingsNotifier(NewHub(), time.Hour)
	defer notifier.Flush()

	notifier.StandingsChanged(1)
	notifier.StandingsChanged(1)
	notifier.StandingsChanged(1)
	notifier.StandingsChanged(2)

	notifier.mu.Lock()
	pending := len(notifier.pending)
	notifier.mu.Unlock()

	// Три изменения первого турнира схлопнулись в один таймер.
	require.Equal(t, 2, pending)
}

func TestStandingsNotifierFlush(t *testing.T) {
	notifier := NewStandingsNotifier(NewHub(), time.Hour)

	notifier.StandingsChanged(1)
	notifier.Flush()

	notifier.mu.Lock()
	pending := len(notifier.pending)
	notifier.mu.Unlock()

	require.Zero(t, pending)
}

func TestStandingsNotifierNilSafe(t *testing.T) {
	var notifier *StandingsNotifier

	require.NotPanics(t, func() {
		notifier.StandingsChanged(1)
	})
}

func TestRoomForTournament(t *testing.T) {
	require.Equal(t, "tournament_42", RoomForTournament(42))
}
