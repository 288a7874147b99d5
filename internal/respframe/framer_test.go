package respframe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanSimpleSet(t *testing.T) {
	buf := []byte("*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n")
	status, frame := Scan(buf, 0)
	require.Equal(t, Complete, status)
	assert.Equal(t, "SET", frame.CommandUpper)
	assert.Equal(t, 0, frame.Start)
	assert.Equal(t, len(buf), frame.End)
}

func TestScanLowercaseCommandUppercased(t *testing.T) {
	buf := []byte("*2\r\n$3\r\nget\r\n$3\r\nfoo\r\n")
	status, frame := Scan(buf, 0)
	require.Equal(t, Complete, status)
	assert.Equal(t, "GET", frame.CommandUpper)
}

func TestScanNeedMoreIncompleteHeader(t *testing.T) {
	buf := []byte("*2\r\n$3\r\nGE")
	status, _ := Scan(buf, 0)
	assert.Equal(t, NeedMore, status)
}

func TestScanNeedMoreMissingTrailingArgs(t *testing.T) {
	buf := []byte("*2\r\n$3\r\nGET\r\n$3\r\nfo")
	status, _ := Scan(buf, 0)
	assert.Equal(t, NeedMore, status)
}

func TestScanTwoFramesBackToBack(t *testing.T) {
	buf := []byte("*1\r\n$4\r\nPING\r\n*1\r\n$4\r\nPING\r\n")
	status, f1 := Scan(buf, 0)
	require.Equal(t, Complete, status)
	assert.Equal(t, "PING", f1.CommandUpper)

	status, f2 := Scan(buf, f1.End)
	require.Equal(t, Complete, status)
	assert.Equal(t, "PING", f2.CommandUpper)
	assert.Equal(t, len(buf), f2.End)
}

func TestScanMalformedNegativeLength(t *testing.T) {
	buf := []byte("*1\r\n$-2\r\n")
	status, _ := Scan(buf, 0)
	assert.Equal(t, Malformed, status)
}

func TestScanMalformedNullBulkAsCommand(t *testing.T) {
	buf := []byte("*1\r\n$-1\r\n")
	status, _ := Scan(buf, 0)
	assert.Equal(t, Malformed, status)
}

func TestScanMalformedNonNumericLength(t *testing.T) {
	buf := []byte("*1\r\n$abc\r\nxxx\r\n")
	status, _ := Scan(buf, 0)
	assert.Equal(t, Malformed, status)
}

func TestScanNeedMoreBulkDataNotFullyBuffered(t *testing.T) {
	buf := []byte("*1\r\n$3\r\nfo")
	status, _ := Scan(buf, 0)
	assert.Equal(t, NeedMore, status)
}

func TestScanMalformedBadTrailer(t *testing.T) {
	buf := []byte("*1\r\n$3\r\nfooXY\r\n")
	status, _ := Scan(buf, 0)
	assert.Equal(t, Malformed, status)
}

func TestScanZeroOrNegativeArgCount(t *testing.T) {
	for _, n := range []string{"0", "-1"} {
		buf := []byte("*" + n + "\r\n")
		status, _ := Scan(buf, 0)
		assert.Equal(t, Malformed, status)
	}
}

func TestScanInlineCommandHasNoCommandToken(t *testing.T) {
	buf := []byte("PING\r\n")
	status, frame := Scan(buf, 0)
	require.Equal(t, Complete, status)
	assert.Empty(t, frame.CommandUpper)
	assert.Equal(t, len(buf), frame.End)
}

func TestScanInlineNeedsMoreWithoutCRLF(t *testing.T) {
	buf := []byte("PING")
	status, _ := Scan(buf, 0)
	assert.Equal(t, NeedMore, status)
}

func TestScanDoesNotAllocatePayloadCopies(t *testing.T) {
	// Multi-argument requests only measure trailing arguments; this test
	// pins that a large trailing argument does not fail or get copied
	// into the Frame (there is nowhere for it to be copied into).
	big := make([]byte, 1<<16)
	for i := range big {
		big[i] = 'x'
	}
	buf := append([]byte("*2\r\n$3\r\nSET\r\n$65536\r\n"), big...)
	buf = append(buf, []byte("\r\n")...)

	status, frame := Scan(buf, 0)
	require.Equal(t, Complete, status)
	assert.Equal(t, "SET", frame.CommandUpper)
	assert.Equal(t, len(buf), frame.End)
}
