package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var plantColumns = []string{
	"id", "scientific_name", "common_name", "description", "image_url",
	"indoor", "outdoor", "tropical", "poisonous_to_humans", "poisonous_to_pets", "invasive", "rare",
	"data_sources", "provider_refs", "last_updated", "created_at",
	"watering_frequency", "sunlight_requirements", "soil_preferences", "temperature_range",
	"difficulty_level", "growth_rate", "propagation_methods",
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func plantRows(mock pgxmock.PgxPoolIface, id uuid.UUID, now time.Time) *pgxmock.Rows {
	var nilString *string
	return mock.NewRows(plantColumns).AddRow(
		id, "Monstera deliciosa", str("Swiss cheese plant"), nilString, nilString,
		true, false, true, false, true, false, false,
		[]string{"perenual"}, []byte(`{"perenual":"1173"}`), now, now,
		str("Average"), []string{"part shade"}, str("Peat"), nilString,
		str("Moderate"), nilString, []string{},
	)
}

func TestPostgresStore_FindByID(t *testing.T) {
	t.Run("Should scan plant and care", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		store := NewPostgresStore(mock, nil)
		id := uuid.New()
		now := time.Now().UTC()

		mock.ExpectQuery("^plant_by_id$").WithArgs(id).WillReturnRows(plantRows(mock, id, now))

		e, err := store.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, e.ID)
		assert.Equal(t, "Monstera deliciosa", e.ScientificName)
		assert.Equal(t, "Swiss cheese plant", *e.CommonName)
		assert.Nil(t, e.Description)
		assert.True(t, e.Indoor)
		assert.False(t, e.PoisonousToHumans)
		assert.True(t, e.PoisonousToPets)
		assert.Equal(t, []string{"perenual"}, e.DataSources)
		assert.Equal(t, map[string]string{"perenual": "1173"}, e.ProviderRefs)
		assert.Equal(t, "Average", *e.Care.WateringFrequency)
		assert.Equal(t, []string{"part shade"}, e.Care.SunlightRequirements)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should map no rows to ErrNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		store := NewPostgresStore(mock, nil)
		id := uuid.New()

		mock.ExpectQuery("^plant_by_id$").WithArgs(id).WillReturnError(pgx.ErrNoRows)

		e, err := store.FindByID(context.Background(), id)
		assert.Nil(t, e)
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_FindByScientificName(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	store := NewPostgresStore(mock, nil)
	id := uuid.New()

	mock.ExpectQuery("^plant_by_name$").WithArgs("Monstera deliciosa").
		WillReturnRows(plantRows(mock, id, time.Now()))

	e, err := store.FindByScientificName(context.Background(), "Monstera deliciosa")
	require.NoError(t, err)
	assert.Equal(t, id, e.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func newEntity() *Entity {
	now := time.Now().UTC()
	return &Entity{
		Plant: Plant{
			ID:             uuid.New(),
			ScientificName: "Ficus lyrata",
			CommonName:     str("Fiddle-leaf fig"),
			DataSources:    []string{"trefle"},
			ProviderRefs:   map[string]string{"trefle": "42"},
			LastUpdated:    now,
			CreatedAt:      now,
		},
		Care: DefaultCare(),
	}
}

func TestPostgresStore_Create(t *testing.T) {
	t.Run("Should insert plant and care in one transaction", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		store := NewPostgresStore(mock, nil)
		e := newEntity()

		mock.ExpectBegin()
		insertArgs := anyArgs(16)
		insertArgs[0] = e.ID
		insertArgs[1] = e.ScientificName
		insertArgs[13] = []byte(`{"trefle":"42"}`)
		mock.ExpectExec("^plant_insert$").WithArgs(insertArgs...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		careArgs := anyArgs(8)
		careArgs[0] = e.ID
		careArgs[2] = []string{DefaultSunlight}
		mock.ExpectExec("^plant_care_upsert$").WithArgs(careArgs...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		require.NoError(t, store.Create(context.Background(), e))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should map a unique violation to ErrConflict and roll back", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		store := NewPostgresStore(mock, nil)

		mock.ExpectBegin()
		mock.ExpectExec("^plant_insert$").WithArgs(anyArgs(16)...).
			WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key"})
		mock.ExpectRollback()

		err = store.Create(context.Background(), newEntity())
		assert.True(t, errors.Is(err, ErrConflict))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should roll back the plant when care fails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		store := NewPostgresStore(mock, nil)

		mock.ExpectBegin()
		mock.ExpectExec("^plant_insert$").WithArgs(anyArgs(16)...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec("^plant_care_upsert$").WithArgs(anyArgs(8)...).
			WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		err = store.Create(context.Background(), newEntity())
		assert.ErrorContains(t, err, "upsert care")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_Update(t *testing.T) {
	t.Run("Should lock, apply and write plant and care", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		store := NewPostgresStore(mock, nil)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery("^plant_by_id_for_update$").WithArgs(id).
			WillReturnRows(plantRows(mock, id, time.Now()))
		updateArgs := anyArgs(14)
		updateArgs[0] = id
		updateArgs[11] = []string{"perenual", "trefle"}
		mock.ExpectExec("^plant_update$").WithArgs(updateArgs...).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec("^plant_care_upsert$").WithArgs(anyArgs(8)...).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		got, err := store.Update(context.Background(), id, func(e *Entity) error {
			e.DataSources = unionSources(e.DataSources, []string{"trefle"})
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "Monstera deliciosa", got.ScientificName)
		assert.Equal(t, []string{"perenual", "trefle"}, got.DataSources)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should return ErrNotFound without writes", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		store := NewPostgresStore(mock, nil)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery("^plant_by_id_for_update$").WithArgs(id).WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()

		called := false
		_, err = store.Update(context.Background(), id, func(*Entity) error {
			called = true
			return nil
		})
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.False(t, called)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should roll back when the mutation fails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		store := NewPostgresStore(mock, nil)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery("^plant_by_id_for_update$").WithArgs(id).
			WillReturnRows(plantRows(mock, id, time.Now()))
		mock.ExpectRollback()

		_, err = store.Update(context.Background(), id, func(*Entity) error {
			return errors.New("rejected")
		})
		assert.ErrorContains(t, err, "rejected")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should roll back the plant update when care fails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		store := NewPostgresStore(mock, nil)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery("^plant_by_id_for_update$").WithArgs(id).
			WillReturnRows(plantRows(mock, id, time.Now()))
		mock.ExpectExec("^plant_update$").WithArgs(anyArgs(14)...).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec("^plant_care_upsert$").WithArgs(anyArgs(8)...).
			WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		got, err := store.Update(context.Background(), id, func(e *Entity) error {
			e.Indoor = true
			return nil
		})
		assert.Nil(t, got)
		assert.ErrorContains(t, err, "upsert care")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_Search(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	store := NewPostgresStore(mock, nil)
	id := uuid.New()

	mock.ExpectQuery("^plant_search$").WithArgs(`%mon\%stera%`, 5).
		WillReturnRows(plantRows(mock, id, time.Now()))

	got, err := store.Search(context.Background(), " mon%stera ", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListStale(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	store := NewPostgresStore(mock, nil)
	cutoff := time.Now().Add(-30 * 24 * time.Hour)
	a, b := uuid.New(), uuid.New()

	mock.ExpectQuery("^plant_stale$").WithArgs(cutoff, 50).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow(a).AddRow(b))

	ids, err := store.ListStale(context.Background(), cutoff, 50)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%ficus%`, likePattern("ficus"))
	assert.Equal(t, `%a\_b\\c%`, likePattern(`a_b\c`))
}
