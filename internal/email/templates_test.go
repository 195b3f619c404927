package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beast717/ishtri.site-sub000/internal/domain"
)

func i64(v int64) *int64 { return &v }

func TestRenderer_Render(t *testing.T) {
	r, err := NewRenderer("https://ishtri.example")
	require.NoError(t, err)

	res := domain.MatchResult{
		OwnerUserID: 10,
		SearchID:    1,
		SearchName:  "Electric dream",
		Listing: &domain.Listing{
			ID:         100,
			Title:      "Tesla Model 3",
			Category:   domain.CategoryVehicle,
			Price:      i64(250000),
			FirstImage: "https://cdn.ishtri.example/img/100.jpg",
		},
	}

	subject, body, err := r.Render(res)
	require.NoError(t, err)

	assert.Equal(t, "New car for you: Electric dream", subject)
	assert.Contains(t, body, "Electric dream")
	assert.Contains(t, body, "Tesla Model 3")
	assert.Contains(t, body, "https://ishtri.example/listing/100")
	assert.Contains(t, body, "250000 kr")
	assert.Contains(t, body, "https://cdn.ishtri.example/img/100.jpg")
}

func TestRenderer_Render_DefaultsAndOmissions(t *testing.T) {
	r, err := NewRenderer("https://ishtri.example")
	require.NoError(t, err)

	res := domain.MatchResult{
		SearchName: "Free stuff",
		Listing: &domain.Listing{
			ID:       5,
			Title:    "Old sofa",
			Category: domain.CategoryGeneral,
		},
	}

	subject, body, err := r.Render(res)
	require.NoError(t, err)

	assert.Equal(t, "New match for your saved search: Free stuff", subject)
	assert.NotContains(t, body, "<img", "no image block without a first image")
	assert.NotContains(t, body, "kr", "no price line without a price")
}

func TestRenderer_Render_EscapesListingTitle(t *testing.T) {
	r, err := NewRenderer("https://ishtri.example")
	require.NoError(t, err)

	res := domain.MatchResult{
		SearchName: "s",
		Listing: &domain.Listing{
			ID:       6,
			Title:    `<script>alert("x")</script>`,
			Category: domain.CategoryGeneral,
		},
	}

	_, body, err := r.Render(res)
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
}
