package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgsAcceptsAnyOrder(t *testing.T) {
	argv := []string{"audioproc", "-rate:48000", "-interface:hw:0", "-port:9000", "-inputs:2", "-outputs:4"}
	args, err := parseArgs(argv)
	require.NoError(t, err)
	assert.Equal(t, "hw:0", args.iface)
	assert.Equal(t, 2, args.inputs)
	assert.Equal(t, 4, args.outputs)
	assert.Equal(t, 48000, args.rate)
	assert.Equal(t, 9000, args.port)
}

func TestParseArgsRejectsMissingFlag(t *testing.T) {
	argv := []string{"audioproc", "-interface:hw:0", "-inputs:2", "-outputs:4", "-rate:48000"}
	_, err := parseArgs(argv)
	assert.Error(t, err)
}

func TestParseArgsRejectsUnknownFlag(t *testing.T) {
	argv := []string{"audioproc", "-interface:hw:0", "-inputs:2", "-outputs:4", "-rate:48000", "-bogus:1"}
	_, err := parseArgs(argv)
	assert.Error(t, err)
}

func TestParseArgsRejectsWrongArgCount(t *testing.T) {
	argv := []string{"audioproc", "-interface:hw:0"}
	_, err := parseArgs(argv)
	assert.Error(t, err)
}
