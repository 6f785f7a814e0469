package models

// Player представляет игрока. Создаётся при первом упоминании имени,
// имя уникально и используется как отображаемое. Участие в турнирах
// хранится только в таблице tournament_players; порядок вступления
// определяет стабильную сортировку при равенстве очков.
type Player struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
