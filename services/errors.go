package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed        = errors.New("validation failed")
	ErrPlayerNameRequired      = errors.New("player name is required")
	ErrTournamentNameRequired  = errors.New("tournament name is required")
	ErrNotEnoughPlayers        = errors.New("at least two players are required")
	ErrRankingIncomplete       = errors.New("ranking must contain every current participant exactly once")
	ErrRankingDuplicatePlayer  = errors.New("ranking contains a duplicate player")
	ErrRankingUnknownPlayer    = errors.New("ranking contains a player not registered for this tournament")
	ErrTournamentCompleted     = errors.New("tournament is completed, no further rounds may be recorded")
	ErrTournamentNotInProgress = errors.New("tournament is not in progress")
	ErrInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrChatMessageEmpty        = errors.New("chat message body is required")
	ErrImportEmpty             = errors.New("import payload contains no usable rows")
	ErrImportUnsupportedFile   = errors.New("unsupported import file format")

	// Ошибки конфликтов
	ErrPlayerNameConflict     = errors.New("player name is already in use")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrPlayerAlreadyInRoster  = errors.New("player is already registered for this tournament")
	ErrPlayerInUse            = errors.New("player has recorded results and cannot be deleted")

	// Ошибки аутентификации и авторизации
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidCredentials   = errors.New("invalid admin password")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей
	ErrPlayerNotFound     = errors.New("player not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrRoundNotFound      = errors.New("round not found")
	ErrParticipantMissing = errors.New("player is not registered for this tournament")
)
