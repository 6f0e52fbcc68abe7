package wish

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func surpriseWish() *Wish {
	return &Wish{
		ID:          1,
		RecipientID: 10,
		AuthorID:    20,
		Title:       "mechanical keyboard",
		Contributions: []Contribution{
			{WishID: 1, GifterID: 20, Amount: 40},
			{WishID: 1, GifterID: 30, Amount: 30},
		},
	}
}

func TestFilterForViewer_RecipientSeesNothing(t *testing.T) {
	w := surpriseWish()

	filtered := FilterForViewer(w, 10)

	require.NotNil(t, filtered)
	assert.Empty(t, filtered.Contributions)
	// the underlying wish keeps its rows, only the view is masked
	assert.Len(t, w.Contributions, 2)
}

func TestFilterForViewer_ContributorSeesEverything(t *testing.T) {
	w := surpriseWish()

	filtered := FilterForViewer(w, 30)

	require.Len(t, filtered.Contributions, 2)
	assert.Equal(t, 40, filtered.Contributions[0].Amount)
	assert.Equal(t, 30, filtered.Contributions[1].Amount)
}

func TestFilterForViewer_ThirdPartySeesEverything(t *testing.T) {
	w := surpriseWish()

	filtered := FilterForViewer(w, 99)

	assert.Len(t, filtered.Contributions, 2)
}

func TestFilterForViewer_SelfAddedStillMaskedForRecipient(t *testing.T) {
	// Others may pledge toward a self-added wish; the recipient still must
	// not learn about it.
	w := &Wish{
		ID:          2,
		RecipientID: 10,
		AuthorID:    10,
		Contributions: []Contribution{
			{WishID: 2, GifterID: 30, Amount: 50},
		},
	}

	filtered := FilterForViewer(w, 10)
	assert.Empty(t, filtered.Contributions)

	other := FilterForViewer(w, 30)
	assert.Len(t, other.Contributions, 1)
}

func TestFilterAllForViewer(t *testing.T) {
	wishes := []Wish{*surpriseWish(), {ID: 2, RecipientID: 11, AuthorID: 10,
		Contributions: []Contribution{{WishID: 2, GifterID: 30, Amount: 10}}}}

	out := FilterAllForViewer(wishes, 10)

	require.Len(t, out, 2)
	assert.Empty(t, out[0].Contributions, "own wish is masked")
	assert.Len(t, out[1].Contributions, 1, "someone else's wish is not")
}
