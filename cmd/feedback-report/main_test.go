package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/restoflow/internal/model"
	"github.com/user/restoflow/internal/sentiment"
)

func TestWrite(t *testing.T) {
	records := []model.Feedback{
		{ID: 1, Rating: 5, Comment: "great food", Sentiment: sentiment.Positive},
		{ID: 2, Rating: 2, Comment: "cold soup", Sentiment: sentiment.Negative},
	}

	var text bytes.Buffer
	require.NoError(t, write(&text, records, false))
	assert.Contains(t, text.String(), "Total feedback:")

	var out bytes.Buffer
	require.NoError(t, write(&out, records, true))

	var decoded struct {
		Report struct {
			Total              int  `json:"total"`
			PositivePercentage *int `json:"positive_percentage"`
		} `json:"report"`
		Ratings []json.RawMessage `json:"ratings"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, 2, decoded.Report.Total)
	require.NotNil(t, decoded.Report.PositivePercentage)
	assert.Equal(t, 50, *decoded.Report.PositivePercentage)
	assert.Len(t, decoded.Ratings, 2)
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, write(&buf, nil, false))
	assert.Equal(t, "No feedback yet.\n", buf.String())
}
