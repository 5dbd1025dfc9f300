package its

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	richSentence = "$,HS,GTB,3.0,NR,1,L,868728036963038,KA01G1234,1,01032019,144604,12.925056,N,77.607734,E," +
		"36.0,185.54,15,943.0,0.9,0.5,Airtel,1,1,12.3,4.4,0,C," +
		"5,222,10,1A2B,3C4D,27,1A2C,3C4E,0,0000,0000,0,0000,0000,0,0000,0000," +
		"1011,10,000164,1.5,2.5,ABCD"
	richNoADCSentence = "$,HS,GTB,3.0,NR,1,L,868728036963038,KA01G1234,1,01032019,144604,12.925056,N,77.607734,E," +
		"36.0,185.54,15,943.0,0.9,0.5,,0,1,12.3,4.4,1,O," +
		"5,222,10,1A2B,3C4D,-85,0,0,0,0,0,0,0,0,0,0,0," +
		"0001,01,"
	emergencySentence = "$,01,EMR,862262043290093,NM,03042019,121400,A,12.963095,N,077.591039,E,921.2,0.0,0.0,G,KA01G1234,+919742011330"
	shortRichSentence = "$,LGN,CLRX,4.2,WD,2,H,861359037496725,AP29AV9778,0,090420,123425,V,17.522700,S,078.344681,W,36.0,90.0,7,"
)

func TestMatchRichWithTelemetryAndADC(t *testing.T) {
	m, ok := Match(richSentence)
	require.True(t, ok)

	assert.Equal(t, &TelemetryHeader{Status: "NR", Event: "1", History: "L"}, m.Header)
	assert.Equal(t, "868728036963038", m.IMEI)
	assert.Equal(t, &ValidityIdentity{Registration: "KA01G1234", Valid: "1"}, m.Identity)
	assert.Equal(t, DateTime{Day: "01", Month: "03", Year: "2019", Hour: "14", Minute: "46", Second: "04"}, m.Time)
	assert.Empty(t, m.Fix)
	assert.Equal(t, Coordinate{Value: "12.925056", Hemisphere: "N"}, m.Latitude)
	assert.Equal(t, Coordinate{Value: "77.607734", Hemisphere: "E"}, m.Longitude)

	rich, ok := m.Trailer.(*RichTrailer)
	require.True(t, ok)
	assert.Equal(t, "36.0", rich.Speed)
	assert.Equal(t, "185.54", rich.Course)
	assert.Equal(t, "15", rich.Satellites)

	require.NotNil(t, rich.Telemetry)
	tm := rich.Telemetry
	assert.Equal(t, "943.0", tm.Altitude)
	assert.Equal(t, "1", tm.Ignition)
	assert.Equal(t, "1", tm.Charge)
	assert.Equal(t, "12.3", tm.Power)
	assert.Equal(t, "4.4", tm.Battery)
	assert.Equal(t, "0", tm.Emergency)
	assert.Len(t, tm.Cells, CellTokens)
	assert.Equal(t, []string{"5", "222", "10", "1A2B", "3C4D"}, tm.Cells[:5])
	assert.Equal(t, "1011", tm.Inputs)
	assert.Equal(t, "10", tm.Outputs)
	assert.Equal(t, &ADC{Channel1: "1.5", Channel2: "2.5"}, tm.ADC)
}

func TestMatchRichWithoutADC(t *testing.T) {
	m, ok := Match(richNoADCSentence)
	require.True(t, ok)

	rich, ok := m.Trailer.(*RichTrailer)
	require.True(t, ok)
	require.NotNil(t, rich.Telemetry)
	assert.Nil(t, rich.Telemetry.ADC)
	assert.Equal(t, "0001", rich.Telemetry.Inputs)
	assert.Equal(t, "01", rich.Telemetry.Outputs)
	assert.Equal(t, "-85", rich.Telemetry.Cells[5])
}

func TestMatchRichWithoutTelemetry(t *testing.T) {
	m, ok := Match(shortRichSentence)
	require.True(t, ok)

	assert.Equal(t, &TelemetryHeader{Status: "WD", Event: "2", History: "H"}, m.Header)
	assert.Equal(t, &ValidityIdentity{Registration: "AP29AV9778", Valid: "0"}, m.Identity)
	assert.Equal(t, "20", m.Time.Year)
	assert.Equal(t, "V", m.Fix)

	rich, ok := m.Trailer.(*RichTrailer)
	require.True(t, ok)
	assert.Equal(t, "7", rich.Satellites)
	assert.Nil(t, rich.Telemetry)
}

func TestMatchTypeHeaderSimpleTrailer(t *testing.T) {
	m, ok := Match(emergencySentence)
	require.True(t, ok)

	assert.Equal(t, &TypeHeader{Type: "EMR"}, m.Header)
	assert.Equal(t, "862262043290093", m.IMEI)
	assert.Equal(t, &StatusIdentity{Status: "NM"}, m.Identity)
	assert.Equal(t, "A", m.Fix)
	assert.Equal(t, &SimpleTrailer{Altitude: "921.2", Speed: "0.0"}, m.Trailer)
}

func TestMatchDateTimeSeparators(t *testing.T) {
	tests := []struct {
		name     string
		datetime string
		expected DateTime
	}{
		{"compact", "09042020,123425", DateTime{"09", "04", "2020", "12", "34", "25"}},
		{"separated", "09,04,2020,12,34,25", DateTime{"09", "04", "2020", "12", "34", "25"}},
		{"short year", "090420,123425", DateTime{"09", "04", "20", "12", "34", "25"}},
		{"mixed", "09,042020,12,3425", DateTime{"09", "04", "2020", "12", "34", "25"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sentence := "$,LGN,CLRX,4.2,NR,1,L,861359037496725,WD," + tt.datetime + ",17.522700,N,078.344681,E,1.0,2.0,3,"
			m, ok := Match(sentence)
			require.True(t, ok)
			assert.Equal(t, tt.expected, m.Time)
			assert.Equal(t, &StatusIdentity{Status: "WD"}, m.Identity)
		})
	}
}

func TestMatchRejectsForeignSentences(t *testing.T) {
	tests := []struct {
		name     string
		sentence string
	}{
		{"empty", ""},
		{"no dollar", ",01,EMR,862262043290093,NM,03042019,121400,A,12.963095,N,077.591039,E,921.2,0.0,"},
		{"nmea", "$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A"},
		{"handshake only", "$,01,"},
		{"short imei", "$,01,EMR,86226204329009,NM,03042019,121400,A,12.963095,N,077.591039,E,921.2,0.0,"},
		{"bad hemisphere", "$,01,EMR,862262043290093,NM,03042019,121400,A,12.963095,X,077.591039,E,921.2,0.0,"},
		{"missing trailer", "$,01,EMR,862262043290093,NM,03042019,121400,A,12.963095,N,077.591039,E,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := Match(tt.sentence)
			assert.False(t, ok)
			assert.Nil(t, m)
		})
	}
}
