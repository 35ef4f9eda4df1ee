package chunker

// charsPerToken is the estimation ratio between characters and tokens.
const charsPerToken = 4

// EstimateTokens approximates the token count of text as ceil(len/4).
func EstimateTokens(text string) int {
	return (len(text) + charsPerToken - 1) / charsPerToken
}
