package services

import (
	"context"
	"errors"
	"strings"

	"github.com/kartliga/kart-league/models"
	"github.com/kartliga/kart-league/realtime"
	"github.com/kartliga/kart-league/repositories"
)

const chatHistoryLimit = 100

// ChatService хранит сообщения чата турнира и рассылает их в комнату
// через websocket-хаб.
type ChatService struct {
	chatRepo       repositories.ChatRepository
	tournamentRepo repositories.TournamentRepository
	hub            *realtime.Hub
}

func NewChatService(
	chatRepo repositories.ChatRepository,
	tournamentRepo repositories.TournamentRepository,
	hub *realtime.Hub,
) *ChatService {
	return &ChatService{
		chatRepo:       chatRepo,
		tournamentRepo: tournamentRepo,
		hub:            hub,
	}
}

// PostMessage сохраняет сообщение и рассылает его подключённым клиентам.
func (s *ChatService) PostMessage(ctx context.Context, tournamentID int, author, body string) (*models.ChatMessage, error) {
	author = strings.TrimSpace(author)
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrChatMessageEmpty
	}
	if author == "" {
		author = "anonymous"
	}

	message := &models.ChatMessage{
		TournamentID: tournamentID,
		Author:       author,
		Body:         body,
	}
	if err := s.chatRepo.Create(ctx, message); err != nil {
		if errors.Is(err, repositories.ErrChatTournamentInvalid) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	if s.hub != nil {
		s.hub.BroadcastToRoom(realtime.RoomForTournament(tournamentID), realtime.Message{
			Type:    realtime.MessageChatMessage,
			RoomID:  realtime.RoomForTournament(tournamentID),
			Payload: message,
		})
	}
	return message, nil
}

// History возвращает последние сообщения чата в хронологическом порядке.
func (s *ChatService) History(ctx context.Context, tournamentID int) ([]models.ChatMessage, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return s.chatRepo.ListByTournament(ctx, tournamentID, chatHistoryLimit)
}
