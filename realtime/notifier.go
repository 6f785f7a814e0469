package realtime

import (
	"sync"
	"time"
)

// StandingsNotifier схлопывает всплески изменений таблицы в одно
// push-уведомление на турнир. Несколько записей раундов (или запись +
// смена состава) в пределах окна дают клиентам ровно один пересчёт,
// вместо дублирования push + poll.
type StandingsNotifier struct {
	hub   *Hub
	delay time.Duration

	mu      sync.Mutex
	pending map[int]*time.Timer
}

func NewStandingsNotifier(hub *Hub, delay time.Duration) *StandingsNotifier {
	return &StandingsNotifier{
		hub:     hub,
		delay:   delay,
		pending: make(map[int]*time.Timer),
	}
}

// StandingsChanged планирует уведомление комнаты турнира. Повторный
// вызов до срабатывания таймера сдвигает окно, не добавляя сообщений.
func (n *StandingsNotifier) StandingsChanged(tournamentID int) {
	if n == nil || n.hub == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	if timer, ok := n.pending[tournamentID]; ok {
		timer.Reset(n.delay)
		return
	}
	n.pending[tournamentID] = time.AfterFunc(n.delay, func() {
		n.mu.Lock()
		delete(n.pending, tournamentID)
		n.mu.Unlock()

		n.hub.BroadcastToRoom(RoomForTournament(tournamentID), Message{
			Type:    MessageStandingsUpdated,
			RoomID:  RoomForTournament(tournamentID),
			Payload: map[string]int{"tournament_id": tournamentID},
		})
	})
}

// Flush немедленно отменяет отложенные таймеры (используется в тестах и
// при остановке сервера).
func (n *StandingsNotifier) Flush() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for id, timer := range n.pending {
		timer.Stop()
		delete(n.pending, id)
	}
}
