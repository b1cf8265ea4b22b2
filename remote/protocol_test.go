package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		frame   string
		want    *Message
		wantErr bool
	}{
		{"input", `{"type":"input","data":"\u001b[A"}`, &Message{Type: MsgInput, Data: "\x1b[A"}, false},
		{"empty input", `{"type":"input"}`, &Message{Type: MsgInput}, false},
		{"hello", `{"type":"hello","cols":120,"rows":40}`, &Message{Type: MsgHello, Cols: 120, Rows: 40}, false},
		{"resize", `{"type":"resize","cols":10,"rows":5}`, &Message{Type: MsgResize, Cols: 10, Rows: 5}, false},
		{"resize zero", `{"type":"resize","cols":0,"rows":5}`, nil, true},
		{"resize at limit", `{"type":"resize","cols":1000,"rows":500}`, &Message{Type: MsgResize, Cols: 1000, Rows: 500}, false},
		{"resize too wide", `{"type":"resize","cols":1001,"rows":10}`, nil, true},
		{"hello too tall", `{"type":"hello","cols":80,"rows":60000}`, nil, true},
		{"resize beyond int32", `{"type":"resize","cols":3000000000,"rows":10}`, nil, true},
		{"server only type", `{"type":"output","data":"x"}`, nil, true},
		{"missing type", `{"data":"x"}`, nil, true},
		{"not json", `hello`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.frame), 1000, 500)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeUnknownIsTyped(t *testing.T) {
	_, err := Decode([]byte(`{"type":"bell"}`), 1000, 500)
	assert.ErrorIs(t, err, ErrUnknownMessage)
}

func TestDecodeSizeIsTyped(t *testing.T) {
	_, err := Decode([]byte(`{"type":"resize","cols":1001,"rows":10}`), 1000, 500)
	assert.ErrorIs(t, err, ErrBadSize)
}
