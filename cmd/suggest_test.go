package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/placefinder/pkg/geocode"
	"github.com/sells-group/placefinder/pkg/geocode/mocks"
)

func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

var vimanNagar = geocode.Suggestion{
	DisplayName: "Viman Nagar, Pune, Maharashtra, India",
	Latitude:    18.5679,
	Longitude:   73.9143,
	Address:     geocode.Address{Suburb: "Viman Nagar", City: "Pune", State: "Maharashtra"},
}

func TestRunSuggest_Text(t *testing.T) {
	gc := mocks.NewMockClient(t)
	gc.On("Suggest", mock.Anything, "Viman").Return([]geocode.Suggestion{vimanNagar}, nil).Once()

	cmd, out := newTestCommand()
	require.NoError(t, runSuggest(cmd, gc, "Viman"))
	assert.Equal(t, "0. Viman Nagar, Pune (18.56790, 73.91430)\n", out.String())
}

func TestRunSuggest_JSON(t *testing.T) {
	suggestJSON = true
	defer func() { suggestJSON = false }()

	gc := mocks.NewMockClient(t)
	gc.On("Suggest", mock.Anything, "Nowhere").Return(nil, nil).Once()

	cmd, out := newTestCommand()
	require.NoError(t, runSuggest(cmd, gc, "Nowhere"))

	var got []geocode.Option
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestRunSuggest_NoResults(t *testing.T) {
	gc := mocks.NewMockClient(t)
	gc.On("Suggest", mock.Anything, "zzz").Return([]geocode.Suggestion{}, nil).Once()

	cmd, out := newTestCommand()
	require.NoError(t, runSuggest(cmd, gc, "zzz"))
	assert.Equal(t, "no results\n", out.String())
}

func TestRunSuggest_Error(t *testing.T) {
	gc := mocks.NewMockClient(t)
	gc.On("Suggest", mock.Anything, "Baner").Return(nil, errors.New("geocode: search returned status 503")).Once()

	cmd, _ := newTestCommand()
	err := runSuggest(cmd, gc, "Baner")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
