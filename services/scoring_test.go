package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPointsFor(t *testing.T) {
	tests := []struct {
		name             string
		position         int
		participantCount int
		want             int
	}{
		{name: "two players winner", position: 1, participantCount: 2, want: 1},
		{name: "two players last", position: 2, participantCount: 2, want: 0},

		{name: "three players winner", position: 1, participantCount: 3, want: 2},
		{name: "three players second", position: 2, participantCount: 3, want: 1},
		{name: "three players last", position: 3, participantCount: 3, want: 0},

		{name: "four players winner", position: 1, participantCount: 4, want: 3},
		{name: "four players second", position: 2, participantCount: 4, want: 2},
		{name: "four players third", position: 3, participantCount: 4, want: 1},
		{name: "four players last", position: 4, participantCount: 4, want: 0},

		{name: "six players fifth", position: 5, participantCount: 6, want: 0},
		{name: "six players last", position: 6, participantCount: 6, want: 0},
		{name: "ten players winner", position: 1, participantCount: 10, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, PointsFor(tt.position, tt.participantCount))
		})
	}
}
