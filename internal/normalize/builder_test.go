package normalize

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StinkyLord/dbc-relational/internal/model"
)

func ptr[T any](v T) *T { return &v }

func signal(name string, ch ...model.Choice) *model.Signal {
	return &model.Signal{Name: name, Scale: 1, Choices: ch}
}

func TestBuild_SameEnumerationDifferentOrderSharesBridge(t *testing.T) {
	msgs := []*model.Message{{
		Name: "M1",
		Signals: []*model.Signal{
			signal("S1", choices("0", "Off", "1", "On")...),
			signal("S2", choices("1", "On", "0", "Off")...),
		},
	}}

	tables, err := Build(msgs)
	require.NoError(t, err)

	require.Len(t, tables.CAN, 2)
	require.Len(t, tables.VTB, 1)
	require.Len(t, tables.ARR, 2)

	for _, row := range tables.CAN {
		assert.Equal(t, "VTB_0001", row.BridgeID)
		assert.Equal(t, "ARR_0001", row.InputArrayID)
		assert.Equal(t, "ARR_0002", row.OutputArrayID)
	}
	assert.Equal(t, model.ARRRow{ID: "ARR_0001", Values: "0 1", Unit: "NA"}, tables.ARR[0])
	assert.Equal(t, model.ARRRow{ID: "ARR_0002", Values: "Off On", Unit: "NA"}, tables.ARR[1])
	assert.Equal(t, model.VTBRow{
		ID: "VTB_0001", DescriptiveName: "NA", SimulinkName: "NA",
		InputArrayID: "ARR_0001", OutputArrayID: "ARR_0002",
	}, tables.VTB[0])
}

func TestBuild_LargerCodeSetGetsOwnArraysAndBridge(t *testing.T) {
	msgs := []*model.Message{{
		Name: "M1",
		Signals: []*model.Signal{
			signal("S1", choices("0", "Off", "1", "On")...),
			signal("S3", choices("0", "Off", "1", "On", "2", "Error")...),
		},
	}}

	tables, err := Build(msgs)
	require.NoError(t, err)

	require.Len(t, tables.VTB, 2)
	require.Len(t, tables.ARR, 4)
	assert.Equal(t, "VTB_0002", tables.CAN[1].BridgeID)
	assert.Equal(t, "ARR_0003", tables.CAN[1].InputArrayID)
	assert.Equal(t, "0 1 2", tables.ARR[2].Values)
	assert.Equal(t, "ARR_0004", tables.CAN[1].OutputArrayID)
	assert.Equal(t, "Off On Error", tables.ARR[3].Values)
}

func TestBuild_SharedCodeSetReusesInputArray(t *testing.T) {
	msgs := []*model.Message{{
		Name: "M1",
		Signals: []*model.Signal{
			signal("A", choices("0", "Off", "1", "On")...),
			signal("B", choices("0", "Off", "1", "Eco")...),
			signal("C", choices("0", "No", "1", "Eco", "2", "Sport")...),
			signal("D", choices("5", "Off", "6", "On")...),
		},
	}}

	tables, err := Build(msgs)
	require.NoError(t, err)

	// A: ARR_0001 (0 1), ARR_0002 (Off On)
	// B: reuses ARR_0001, mints ARR_0003 (Off Eco)
	// C: mints ARR_0004 (0 1 2), ARR_0005 (No Eco Sport)
	// D: mints ARR_0006 (5 6), reuses ARR_0002
	want := [][3]string{
		{"VTB_0001", "ARR_0001", "ARR_0002"},
		{"VTB_0002", "ARR_0001", "ARR_0003"},
		{"VTB_0003", "ARR_0004", "ARR_0005"},
		{"VTB_0004", "ARR_0006", "ARR_0002"},
	}
	for i, w := range want {
		row := tables.CAN[i]
		assert.Equal(t, w, [3]string{row.BridgeID, row.InputArrayID, row.OutputArrayID}, "signal %s", row.Signal)
	}
	assert.Len(t, tables.ARR, 6)
	assert.Len(t, tables.VTB, 4)
}

func TestBuild_LargeCodesRenderExactly(t *testing.T) {
	msgs := []*model.Message{{
		Name: "M1",
		Signals: []*model.Signal{
			signal("Raw64", choices("18446744073709551615", "SNA", "0", "Zero", "-1", "Err")...),
		},
	}}

	tables, err := Build(msgs)
	require.NoError(t, err)

	require.Len(t, tables.ARR, 2)
	assert.Equal(t, "-1 0 18446744073709551615", tables.ARR[0].Values)
	assert.Equal(t, "Err Zero SNA", tables.ARR[1].Values)
}

func TestBuild_NoChoicesYieldsNA(t *testing.T) {
	msgs := []*model.Message{{
		Name:    "M1",
		Signals: []*model.Signal{signal("Empty"), signal("Nil"), {Name: "Zero", Choices: []model.Choice{}}},
	}}

	tables, err := Build(msgs)
	require.NoError(t, err)

	assert.Empty(t, tables.VTB)
	assert.Empty(t, tables.ARR)
	for _, row := range tables.CAN {
		assert.Equal(t, "NA", row.BridgeID)
		assert.Equal(t, "NA", row.InputArrayID)
		assert.Equal(t, "NA", row.OutputArrayID)
	}
}

func TestBuild_MissingAttributesRenderNA(t *testing.T) {
	msgs := []*model.Message{{
		Name:    "M1",
		Signals: []*model.Signal{{Name: "Bare", Scale: 1}},
	}}

	tables, err := Build(msgs)
	require.NoError(t, err)

	assert.Equal(t, model.CANRow{
		ID: "CAN_0001", Network: "NA", Message: "M1", Signal: "Bare", SimulinkName: "NA",
		Offset: "0", Scale: "1", Minimum: "NA", Maximum: "NA", Default: "NA",
		Unit: "NA", SPN: "NA", Receivers: "NA", Senders: "NA",
		BridgeID: "NA", InputArrayID: "NA", OutputArrayID: "NA",
	}, tables.CAN[0])
}

func TestBuild_ProjectsAttributes(t *testing.T) {
	msgs := []*model.Message{{
		Name:    "Engine",
		Bus:     ptr("Powertrain"),
		Senders: []string{"ECU1", "ECU2"},
		Signals: []*model.Signal{{
			Name:      "Temp",
			Offset:    -40,
			Scale:     0.5,
			Minimum:   ptr(-40.0),
			Maximum:   ptr(87.5),
			Initial:   ptr(0.0),
			Unit:      ptr("degC"),
			SPN:       ptr(int64(110)),
			Receivers: []string{},
		}},
	}}

	tables, err := Build(msgs)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"CAN_0001", "Powertrain", "Engine", "Temp", "NA",
		"-40", "0.5", "-40", "87.5", "0",
		"degC", "110", "", "ECU1 ECU2",
		"NA", "NA", "NA",
	}, tables.CAN[0].Record())
}

func TestBuild_IdentifiersContiguousAcrossMessages(t *testing.T) {
	var msgs []*model.Message
	for m := 0; m < 3; m++ {
		msg := &model.Message{Name: fmt.Sprintf("M%d", m)}
		for s := 0; s < 4; s++ {
			msg.Signals = append(msg.Signals, signal(fmt.Sprintf("S%d_%d", m, s),
				choices("0", "Off", fmt.Sprint(s+1), fmt.Sprintf("L%d", m))...))
		}
		msgs = append(msgs, msg)
	}

	tables, err := Build(msgs)
	require.NoError(t, err)

	for i, row := range tables.CAN {
		assert.Equal(t, fmt.Sprintf("CAN_%04d", i+1), row.ID)
	}
	for i, row := range tables.VTB {
		assert.Equal(t, fmt.Sprintf("VTB_%04d", i+1), row.ID)
	}
	for i, row := range tables.ARR {
		assert.Equal(t, fmt.Sprintf("ARR_%04d", i+1), row.ID)
	}

	// Every reference resolves to an existing row.
	arr := map[string]bool{}
	for _, r := range tables.ARR {
		arr[r.ID] = true
	}
	vtb := map[string]model.VTBRow{}
	for _, r := range tables.VTB {
		vtb[r.ID] = r
		assert.True(t, arr[r.InputArrayID])
		assert.True(t, arr[r.OutputArrayID])
	}
	for _, r := range tables.CAN {
		b, ok := vtb[r.BridgeID]
		require.True(t, ok, "bridge %s of %s", r.BridgeID, r.Signal)
		assert.Equal(t, b.InputArrayID, r.InputArrayID)
		assert.Equal(t, b.OutputArrayID, r.OutputArrayID)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	build := func() *Tables {
		msgs := []*model.Message{
			{Name: "A", Signals: []*model.Signal{
				signal("x", choices("2", "c", "0", "a", "1", "b")...),
				signal("y"),
			}},
			{Name: "B", Signals: []*model.Signal{
				signal("z", choices("1", "b", "0", "a", "2", "c")...),
				signal("w", choices("0", "a")...),
			}},
		}
		tables, err := Build(msgs)
		require.NoError(t, err)
		return tables
	}

	first := build()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, build())
	}
}

func TestBuild_MalformedChoiceKeyAborts(t *testing.T) {
	msgs := []*model.Message{
		{Name: "Lights", Signals: []*model.Signal{signal("Head", choices("0", "Off", "1", "On")...)}},
		{Name: "Wipers", Signals: []*model.Signal{signal("Mode", choices("0", "Off", "one", "Slow")...)}},
	}

	tables, err := Build(msgs)
	require.Error(t, err)
	assert.Nil(t, tables)
	assert.ErrorIs(t, err, ErrMalformedChoiceKey)

	var se *SignalError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "Wipers", se.Message)
	assert.Equal(t, "Mode", se.Signal)
	assert.Contains(t, err.Error(), `"Wipers"`)
}

func TestBuild_Progress(t *testing.T) {
	msgs := []*model.Message{
		{Name: "A", Signals: []*model.Signal{signal("a"), signal("b")}},
		{Name: "B", Signals: []*model.Signal{signal("c")}},
	}

	var calls [][2]int
	_, err := Build(msgs, WithProgress(func(done, total int) {
		calls = append(calls, [2]int{done, total})
	}))
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, calls)
}

func TestBuild_EmptyInput(t *testing.T) {
	tables, err := Build(nil)
	require.NoError(t, err)
	assert.Empty(t, tables.CAN)
	assert.Empty(t, tables.VTB)
	assert.Empty(t, tables.ARR)
}
