package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyTermsDropsStopWordsAndShortTokens(t *testing.T) {
	terms := keyTerms("show me the failed logins from db-01")
	assert.Equal(t, []string{"failed", "logins", "db-01"}, terms)
}

func TestKeyTermsDeduplicates(t *testing.T) {
	terms := keyTerms("timeout timeout TIMEOUT errors")
	assert.Equal(t, []string{"timeout", "errors"}, terms)
}

func TestKeyTermsKeepsFieldishTokens(t *testing.T) {
	terms := keyTerms("errors in user.name for host_a")
	assert.Equal(t, []string{"errors", "user.name", "host_a"}, terms)
}

func TestKeyTermsNFC(t *testing.T) {
	// Decomposed and composed forms normalize to the same token.
	assert.Equal(t, keyTerms("café orders"), keyTerms("café orders"))
}

func TestKeyTermsEmpty(t *testing.T) {
	assert.Empty(t, keyTerms(""))
	assert.Empty(t, keyTerms("the of and"))
	assert.Empty(t, keyTerms("a b c"))
}
