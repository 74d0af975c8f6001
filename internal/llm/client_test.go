package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResult_DirectJSON(t *testing.T) {
	res := parseResult(`{"type":"number","answer":42}`)
	require.NotNil(t, res)
	assert.Equal(t, "number", res.Type)
	assert.Equal(t, float64(42), res.Answer)
}

func TestParseResult_JSONWrappedInProse(t *testing.T) {
	res := parseResult("Sure, here is the answer:\n{\"type\":\"string\",\"answer\":\"hello\"}\nLet me know!")
	require.NotNil(t, res)
	assert.Equal(t, "string", res.Type)
	assert.Equal(t, "hello", res.Answer)
}

func TestParseResult_Unparseable(t *testing.T) {
	assert.Nil(t, parseResult("I cannot answer that."))
	assert.Nil(t, parseResult("{broken json"))
}

func TestNewOpenAIAsker_NilWithoutKey(t *testing.T) {
	assert.Nil(t, NewOpenAIAsker("", "gpt-4o-mini"))
	assert.NotNil(t, NewOpenAIAsker("sk-test", "gpt-4o-mini"))
}
