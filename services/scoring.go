package services

// PointsFor возвращает очки за позицию в заезде с participantCount
// участниками. Таблица фиксированная:
//
//	N=2:  1, 0
//	N=3:  2, 1, 0
//	N>=4: 3, 2, 1, 0, 0, ...
//
// Позиции — строгий порядок без ничьих, дробных очков нет. Поведение
// для participantCount < 2 не определено: сервисы не допускают заезд
// менее чем с двумя участниками.
func PointsFor(position, participantCount int) int {
	var podium []int
	switch {
	case participantCount >= 4:
		podium = []int{3, 2, 1}
	case participantCount == 3:
		podium = []int{2, 1}
	default:
		podium = []int{1}
	}
	if position >= 1 && position <= len(podium) {
		return podium[position-1]
	}
	return 0
}
