package scene

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/ephem"
)

var refTime = time.Date(2023, 2, 19, 20, 56, 0, 0, time.UTC)

func issStore() *ephem.Store {
	s := ephem.NewStore()
	s.Install(&ephem.Series{
		Source: "test",
		Vectors: []ephem.StateVector{{
			Timestamp: "2023-02-19T20:56:00.000",
			Time:      refTime,
			Position:  astro.Vec3{X: 3239.569828342850 / 6371, Y: 4055.919681103620 / 6371, Z: -4397.260437300800 / 6371},
			Velocity:  astro.Vec3{X: -6.65824933190568 / 6371, Y: 1.63790540882254 / 6371, Z: -3.38910165692533 / 6371},
		}, {
			Timestamp: "2023-02-19T21:00:00.000",
			Time:      refTime.Add(4 * time.Minute),
			Position:  astro.Vec3{X: 0.27, Y: 0.67, Z: -0.78},
		}},
	})
	return s
}

func TestBuild_ReferenceEpoch(t *testing.T) {
	b := NewBuilder(issStore())
	f, err := b.Build(20230219.2056)
	require.NoError(t, err)

	assert.False(t, f.Realtime)
	assert.Equal(t, refTime, f.Time)
	assert.InDelta(t, 2459995.372222, f.JulianDay, 1e-5)

	// Render distances follow the scales.
	assert.InDelta(t, f.Result.Sun.Distance*DefaultSunScale, f.Sun.Position.Norm(), 1e-9)
	assert.InDelta(t, f.Result.Moon.Distance*DefaultMoonScale, f.Moon.Position.Norm(), 1e-9)
	assert.InDelta(t, 49.4, f.Sun.Position.Norm(), 0.2)
	assert.InDelta(t, 9.37, f.Moon.Position.Norm(), 0.1)

	// Both are south of the equator, which is render -Y.
	assert.Less(t, f.Sun.Position.Y, 0.0)
	assert.Less(t, f.Moon.Position.Y, 0.0)

	require.NotNil(t, f.Satellite)
	assert.False(t, f.Satellite.Clamped)
	assert.Equal(t, "ISS", f.Satellite.Name)
	assert.InDelta(t, 432, f.Satellite.AltitudeKm, 5)
	assert.InDelta(t, f.Satellite.State.Position.Norm(), f.Satellite.Position.Norm(), 1e-9)
}

func TestBuild_MatchesToRenderFrame(t *testing.T) {
	f, err := NewBuilder(nil, WithScales(Scales{Sun: 1, Moon: 1})).Build(20230219.2056)
	require.NoError(t, err)

	want := astro.RotateJ2000ToFrame(
		astro.EquatorialToCartesian(f.Result.Moon.RAHours, f.Result.Moon.DecDeg, f.Result.Moon.Distance),
		f.JulianDay)
	assert.InDelta(t, 0, want.Sub(f.Moon.Position).Norm(), 1e-9)
	assert.Nil(t, f.Satellite)
}

func TestBuildAt_Realtime(t *testing.T) {
	b := NewBuilder(issStore(), WithSatelliteName("Zarya"))
	at := refTime.Add(90*time.Second + 500*time.Millisecond)

	f, err := b.BuildAt(at)
	require.NoError(t, err)

	assert.True(t, f.Realtime)
	assert.Equal(t, astro.Epoch(20230219.2057), f.Epoch)
	assert.Equal(t, at, f.Time)

	require.NotNil(t, f.Satellite)
	assert.Equal(t, "Zarya", f.Satellite.Name)
	assert.True(t, f.Satellite.State.Adjusted)
	assert.Equal(t, at, f.Satellite.State.AdjustedAt)
}

func TestBuild_SatelliteClamped(t *testing.T) {
	f, err := NewBuilder(issStore()).BuildAt(refTime.Add(time.Hour))
	require.NoError(t, err)

	require.NotNil(t, f.Satellite)
	assert.True(t, f.Satellite.Clamped)
	assert.NotEmpty(t, f.Satellite.Note)
	assert.False(t, f.Satellite.State.Adjusted)
}

func TestBuild_NotLoadedStore(t *testing.T) {
	f, err := NewBuilder(ephem.NewStore()).Build(20230219.2056)
	require.NoError(t, err)
	assert.Nil(t, f.Satellite)
}

func TestBuild_FatalEpoch(t *testing.T) {
	_, err := NewBuilder(nil).Build(astro.Epoch(math.NaN()))
	assert.ErrorIs(t, err, astro.ErrFatalEpoch)
}

func TestBuild_Observer(t *testing.T) {
	obs := astro.Observer{LatDeg: 51.4779, LonDeg: -0.0015, Name: "Greenwich"}
	f, err := NewBuilder(nil, WithObserver(obs)).Build(20230219.2056)
	require.NoError(t, err)

	require.NotNil(t, f.Observer)
	require.NotNil(t, f.Sun.Horizontal)
	require.NotNil(t, f.Moon.Horizontal)
	// 20:56 UTC in February: the Sun is well below the horizon in London.
	assert.Less(t, f.Sun.Horizontal.ElDeg, -20.0)
}

func TestExport_JSON(t *testing.T) {
	f, err := NewBuilder(issStore(), WithObserver(astro.Observer{LatDeg: 35, LonDeg: -117})).Build(20230219.2056)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Export(f).WriteJSON(&buf))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "20230219.2056", decoded["epoch"])
	assert.Equal(t, "valid", decoded["validity"])
	assert.NotContains(t, decoded, "issues")

	lunar := decoded["lunar"].(map[string]interface{})
	assert.Equal(t, "New Moon", lunar["phase"])

	sun := decoded["sun"].(map[string]interface{})
	assert.Contains(t, sun, "az_deg")

	sat := decoded["satellite"].(map[string]interface{})
	assert.Equal(t, "2023-02-19T20:56:00.000", sat["record"])
	assert.Equal(t, false, sat["clamped"])
}

func TestExport_InvalidEpochIssues(t *testing.T) {
	f, err := NewBuilder(nil).Build(20230230.1200)
	require.NoError(t, err)

	e := Export(f)
	assert.Equal(t, "invalid-computed", e.Validity)
	require.Len(t, e.Issues, 1)
	assert.Contains(t, e.Issues[0], "wrong number of days")
	assert.Nil(t, e.Satellite)
}

func TestWriteSummary(t *testing.T) {
	f, err := NewBuilder(issStore()).Build(20230219.2056)
	require.NoError(t, err)

	var buf bytes.Buffer
	WriteSummary(&buf, f)
	out := buf.String()

	assert.Contains(t, out, "epoch 20230219.2056, fixed")
	assert.Contains(t, out, "Sun")
	assert.Contains(t, out, "Moon")
	assert.Contains(t, out, "New Moon")
	assert.Contains(t, out, "ISS")
	assert.InDelta(t, 22.2, f.Sun.Equatorial.RAHours, 0.01)
	assert.Contains(t, out, FormatRA(f.Sun.Equatorial.RAHours))
}

func TestBuild_EpochOnRecord(t *testing.T) {
	series, _, err := ephem.Load(context.Background(), ephem.FileSource{Path: "../ephem/testdata/iss_oem_sample.txt"})
	require.NoError(t, err)
	store := ephem.NewStore()
	store.Install(series)

	f, err := NewBuilder(store).Build(20230219.2052)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 2, 19, 20, 52, 0, 0, time.UTC), f.Time)

	require.NotNil(t, f.Satellite)
	assert.Equal(t, "2023-02-19T20:52:00.000", f.Satellite.State.Timestamp)
	assert.False(t, f.Satellite.State.Adjusted)
	assert.InDelta(t, 4543.775098440900/astro.EarthRadiusKm, f.Satellite.State.Position.X, 1e-12)

	// The earlier record was not touched by the fixed-epoch query.
	first, err := store.Query(time.Date(2023, 2, 19, 20, 48, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, first.Adjusted)
}

func TestBuild_InvalidCalendarEpochTime(t *testing.T) {
	f, err := NewBuilder(nil).Build(20230230.1200)
	require.NoError(t, err)
	assert.Equal(t, astro.InvalidComputed, f.Result.Validity)
	// February 30th falls through to March 2nd by Julian day.
	assert.WithinDuration(t, time.Date(2023, 3, 2, 12, 0, 0, 0, time.UTC), f.Time, time.Second)
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "22h11m53s", FormatRA(22.198056))
	assert.Equal(t, "00h00m00s", FormatRA(23.99999999))
	assert.Equal(t, "-11°08'24\"", FormatDec(-11.14))
	assert.Equal(t, "+05°30'00\"", FormatDec(5.5))
	assert.Equal(t, "358,150 km", FormatDistance(358150))
	assert.Equal(t, "149,597,871 km", FormatDistance(149597870.7))
	assert.Equal(t, "412 km", FormatDistance(412.2))
	assert.Equal(t, 0.12, Round(0.1234, 2))
	assert.Equal(t, 1.0, Round(0.99951, 3))
}
