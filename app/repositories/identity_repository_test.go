package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luna/app/models/identity"
)

func TestIdentityCreateComputesSunSign(t *testing.T) {
	setupTestDB(t)
	repo := NewIdentityRepository()
	ctx := context.Background()

	ident := &identity.Identity{
		Email:     "maria@example.com",
		Whatsapp:  "+5511999990000",
		FullName:  "Maria Silva",
		BirthDate: "1995-06-15",
		BirthCity: "São Paulo",
	}
	require.NoError(t, repo.Create(ctx, ident))

	assert.NotEmpty(t, ident.ID)
	assert.Equal(t, "双子座", ident.SunSign)

	found, err := repo.GetByEmail(ctx, "maria@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, ident.ID, found.ID)
}

func TestIdentityGetMissingReturnsNil(t *testing.T) {
	setupTestDB(t)
	repo := NewIdentityRepository()

	found, err := repo.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestIdentityUpdateRecomputesSunSign(t *testing.T) {
	setupTestDB(t)
	repo := NewIdentityRepository()
	ctx := context.Background()

	ident := &identity.Identity{
		Email:     "ana@example.com",
		Whatsapp:  "+5511988887777",
		FullName:  "Ana Costa",
		BirthDate: "1992-09-01",
		BirthCity: "Curitiba",
	}
	require.NoError(t, repo.Create(ctx, ident))
	require.Equal(t, "处女座", ident.SunSign)

	updated, err := repo.Update(ctx, ident.ID, map[string]interface{}{
		"birth_date": "1992-11-01",
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "天蝎座", updated.SunSign)
}

func TestIdentityUpdateMissingReturnsNil(t *testing.T) {
	setupTestDB(t)
	repo := NewIdentityRepository()

	updated, err := repo.Update(context.Background(), "missing", map[string]interface{}{
		"full_name": "Nova",
	})
	require.NoError(t, err)
	assert.Nil(t, updated)
}
