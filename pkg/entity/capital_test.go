package entity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapitalTagger(t *testing.T) {
	spans, err := CapitalTagger{}.Tag(context.Background(),
		"The Wizard of Oz lived in Kansas. Mr. Darcy met Mr. and Dorothy Gale.")
	require.NoError(t, err)
	assert.Equal(t, []Span{
		{Text: "Wizard of Oz", Label: LabelMisc},
		{Text: "Kansas", Label: LabelMisc},
		{Text: "Mr. Darcy", Label: LabelPerson},
		{Text: "Dorothy Gale", Label: LabelMisc},
	}, spans)
}

func TestIsPerson(t *testing.T) {
	assert.True(t, IsPerson(LabelPerson))
	assert.False(t, IsPerson(LabelGPE))
}
