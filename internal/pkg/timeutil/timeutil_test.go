package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndOfLocalDayUTC_ParisWinter(t *testing.T) {
	got, err := EndOfLocalDayUTC("2019-12-01", "75")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2019-12-01T22:59:59Z", got.Format(time.RFC3339))
}

func TestEndOfLocalDayUTC_ParisSummer(t *testing.T) {
	got, err := EndOfLocalDayUTC("2020-07-14", "75")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2020-07-14T21:59:59Z", got.Format(time.RFC3339))
}

func TestEndOfLocalDayUTC_Cayenne_CrossesIntoNextUTCDay(t *testing.T) {
	got, err := EndOfLocalDayUTC("2020-12-25", "973")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2020-12-26T02:59:59Z", got.Format(time.RFC3339))
}

func TestEndOfLocalDayUTC_EmptyDayMeansNoLimit(t *testing.T) {
	got, err := EndOfLocalDayUTC("", "75")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEndOfLocalDayUTC_RejectsMalformedDay(t *testing.T) {
	_, err := EndOfLocalDayUTC("25/12/2020", "75")

	assert.Error(t, err)
}

func TestExactUTC_Cayenne(t *testing.T) {
	got, err := ExactUTC("2020-12-24", "20:00", "973")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2020-12-24T23:00:00Z", got.Format(time.RFC3339))
}

func TestExactUTC_ParisWinter(t *testing.T) {
	got, err := ExactUTC("2021-01-15", "20:00", "75")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2021-01-15T19:00:00Z", got.Format(time.RFC3339))
}

func TestExactUTC_MissingPartYieldsNil(t *testing.T) {
	got, err := ExactUTC("2021-01-15", "", "75")

	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ExactUTC("", "20:00", "75")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBookingLimitUTC_SameLocalDaySnapsToBeginning(t *testing.T) {
	beginning, err := ExactUTC("2020-12-24", "20:00", "973")
	require.NoError(t, err)

	got, err := BookingLimitUTC("2020-12-24", beginning, "973")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(*beginning))
}

func TestBookingLimitUTC_EarlierDayUsesEndOfDay(t *testing.T) {
	beginning, err := ExactUTC("2020-12-24", "20:00", "973")
	require.NoError(t, err)

	got, err := BookingLimitUTC("2020-12-22", beginning, "973")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2020-12-23T02:59:59Z", got.Format(time.RFC3339))
}

func TestBookingLimitUTC_NoBeginning(t *testing.T) {
	got, err := BookingLimitUTC("2021-03-21", nil, "75")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2021-03-21T22:59:59Z", got.Format(time.RFC3339))
}

func TestLocalDayAndHour(t *testing.T) {
	instant := time.Date(2020, 12, 24, 23, 0, 0, 0, time.UTC)

	assert.Equal(t, "2020-12-24", LocalDay(instant, "973"))
	assert.Equal(t, "20:00", LocalHour(instant, "973"))

	assert.Equal(t, "2020-12-25", LocalDay(instant, "75"))
	assert.Equal(t, "00:00", LocalHour(instant, "75"))
}

func TestLocationForDepartment(t *testing.T) {
	assert.Equal(t, "America/Cayenne", LocationForDepartment("973").String())
	assert.Equal(t, "Europe/Paris", LocationForDepartment("75").String())
	assert.Equal(t, "Europe/Paris", LocationForDepartment("").String())
}
