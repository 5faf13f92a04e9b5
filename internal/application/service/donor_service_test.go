package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/donation-desk/internal/domain/entity"
	"github.com/garyjia/donation-desk/internal/domain/event"
)

func TestDonorService_Create(t *testing.T) {
	t.Run("valid email is trimmed", func(t *testing.T) {
		f := newFixture()
		d := &entity.Donor{DonorName: "Ravi", Email: "  ravi@example.org "}

		require.NoError(t, f.donors.Create(context.Background(), d))
		assert.Equal(t, "ravi@example.org", d.Email)
		assert.NotEmpty(t, d.Name)
	})

	t.Run("invalid email is rejected", func(t *testing.T) {
		f := newFixture()
		err := f.donors.Create(context.Background(), &entity.Donor{DonorName: "Ravi", Email: "not-an-email"})
		assert.ErrorIs(t, err, ErrInvalidEmail)
	})

	t.Run("donor name defaults to email", func(t *testing.T) {
		f := newFixture()
		d := &entity.Donor{Email: "ravi@example.org"}
		require.NoError(t, f.donors.Create(context.Background(), d))
		assert.Equal(t, "ravi@example.org", d.DonorName)
	})
}

func TestDonorService_FindByEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.donors.Create(ctx, &entity.Donor{DonorName: "Asha 2", Email: "asha@example.org"}))

	d, err := f.donors.FindByEmail(ctx, "asha@example.org")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "Asha 2", d.DonorName)

	none, err := f.donors.FindByEmail(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestDonorService_MakeCustomerAndLink(t *testing.T) {
	t.Run("creates individual customer", func(t *testing.T) {
		f := newFixture()
		ctx := context.Background()
		donor := &entity.Donor{DonorName: "Ravi", Email: "ravi@example.org", Mobile: "+919900000000"}
		require.NoError(t, f.donors.Create(ctx, donor))

		customer, err := f.donors.MakeCustomerAndLink(ctx, donor.Name)
		require.NoError(t, err)
		assert.Equal(t, "Ravi", customer.CustomerName)
		assert.Equal(t, entity.CustomerTypeIndividual, customer.CustomerType)
		assert.Equal(t, "Individual", customer.CustomerGroup)
		assert.Equal(t, "India", customer.Territory)
		assert.Equal(t, "+919900000000", customer.Mobile)

		linked, err := f.donors.Get(ctx, donor.Name)
		require.NoError(t, err)
		assert.Equal(t, customer.Name, linked.Customer)
		assert.Contains(t, f.publisher.types(), event.TypeCustomerLinked)
	})

	t.Run("already linked", func(t *testing.T) {
		f := newFixture()
		_, err := f.donors.MakeCustomerAndLink(context.Background(), "DONOR-00001")
		assert.ErrorIs(t, err, ErrCustomerAlreadyLinked)
		assert.Empty(t, f.customers.created)
	})

	t.Run("unknown donor", func(t *testing.T) {
		f := newFixture()
		_, err := f.donors.MakeCustomerAndLink(context.Background(), "DONOR-99999")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSettingsService(t *testing.T) {
	t.Run("get without saved settings returns zero values", func(t *testing.T) {
		f := newFixture()
		f.settingsRepo.settings = nil

		s, err := f.settings.Get(context.Background())
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Empty(t, s.Company)
	})

	t.Run("seed only fills empty settings", func(t *testing.T) {
		f := newFixture()
		f.settingsRepo.settings = nil
		ctx := context.Background()
		types := []entity.DonorType{{Name: "Corporate", LinkedItem: "Corporate Donation"}}

		require.NoError(t, f.settings.Seed(ctx, &entity.NonProfitSettings{Company: "Seeded"}, types))
		require.NoError(t, f.settings.Seed(ctx, &entity.NonProfitSettings{Company: "Ignored"}, nil))

		s, err := f.settings.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Seeded", s.Company)
		assert.Equal(t, 1, f.settingsRepo.saves)
		assert.Equal(t, "Corporate Donation", f.donorTypes.items["Corporate"].LinkedItem)
	})

	t.Run("update saves", func(t *testing.T) {
		f := newFixture()
		require.NoError(t, f.settings.Update(context.Background(), &entity.NonProfitSettings{Company: "New"}))
		assert.Equal(t, "New", f.settingsRepo.settings.Company)
	})
}
