package provider

import (
	"fmt"

	"github.com/kirillkom/deductive-coding/internal/core/domain"
)

const noMatchesSentinel = "NO_MATCHES"

func buildQuotePrompt(document string, tag domain.Tag) string {
	return fmt.Sprintf(`You are analyzing a document for qualitative coding. Please identify and extract relevant quotes from the document that closely relate to the following tag:

Tag: "%[1]s"
Description: "%[2]s"

Document:
%[3]s

Instructions:
1. Carefully read through the document
2. Identify any passages, sentences, or phrases that are closely relevant to the tag "%[1]s"
3. Extract these relevant quotes exactly as they appear in the document.
4. Return only the relevant quotes, one per line
5. If no relevant content is found, return "%[4]s"

Important: Only return direct quotes from the document. Do not paraphrase or summarize. Do not, under any circumstances, make up quotes that are not present in the document.`,
		tag.Name, tag.Description, document, noMatchesSentinel)
}
