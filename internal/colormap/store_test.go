package colormap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironsheep/minmap-viewer/internal/mapfile"
)

func testLegend() *mapfile.Legend {
	return mapfile.NewLegend(
		mapfile.Mineral{Name: "Quartz", ID: 1},
		mapfile.Mineral{Name: "Feldspar", ID: 2},
		mapfile.Mineral{Name: "Garnet", ID: 5},
	)
}

func TestStore_InitializeUsesGenerator(t *testing.T) {
	red, green, blue := RGB{255, 0, 0}, RGB{0, 255, 0}, RGB{0, 0, 255}
	s := NewStore(NewSequence(red, green, blue))
	s.Initialize(testLegend())

	require.Equal(t, 3, s.Len())
	for id, want := range map[int]RGB{1: red, 2: green, 5: blue} {
		got, ok := s.Color(id)
		require.True(t, ok, "id %d should be mapped", id)
		require.Equal(t, want, got, "id %d", id)
	}
}

func TestStore_InitializeReplacesPriorMapping(t *testing.T) {
	s := NewStore(NewSequence(RGB{1, 2, 3}))
	s.Initialize(testLegend())
	s.Initialize(mapfile.NewLegend(mapfile.Mineral{Name: "Olivine", ID: 9}))

	require.Equal(t, 1, s.Len())
	_, ok := s.Color(1)
	require.False(t, ok, "ids from the previous legend must be gone")
	_, ok = s.Color(9)
	require.True(t, ok)
}

func TestStore_DuplicateIDLastDrawWins(t *testing.T) {
	first, second := RGB{10, 10, 10}, RGB{20, 20, 20}
	s := NewStore(NewSequence(first, second))
	s.Initialize(mapfile.NewLegend(
		mapfile.Mineral{Name: "Quartz", ID: 1},
		mapfile.Mineral{Name: "Chert", ID: 1},
	))

	got, _ := s.Color(1)
	require.Equal(t, second, got)
}

func TestStore_SetColor(t *testing.T) {
	s := NewStore(NewSeededRandom(1))
	s.Initialize(testLegend())

	before := s.Snapshot()
	require.NoError(t, s.SetColor(2, RGB{0, 255, 0}))

	got, _ := s.Color(2)
	require.Equal(t, RGB{0, 255, 0}, got)
	for _, id := range []int{1, 5} {
		c, _ := s.Color(id)
		require.Equal(t, before[id], c, "id %d must be unaffected", id)
	}
}

func TestStore_SetColorUnknownID(t *testing.T) {
	s := NewStore(NewSeededRandom(1))
	s.Initialize(testLegend())

	err := s.SetColor(42, RGB{1, 1, 1})
	require.True(t, errors.Is(err, ErrUnknownMineral))
	_, ok := s.Color(42)
	require.False(t, ok, "unknown id must not be added")
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	s := NewStore(NewSequence(RGB{1, 1, 1}))
	s.Initialize(testLegend())

	snap := s.Snapshot()
	snap[1] = RGB{9, 9, 9}
	got, _ := s.Color(1)
	require.Equal(t, RGB{1, 1, 1}, got)
}

func TestNewStore_NilGenerator(t *testing.T) {
	s := NewStore(nil)
	s.Initialize(testLegend())
	require.Equal(t, 3, s.Len())
}
