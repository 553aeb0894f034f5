package usecase

import "strings"

// PromptTemplate substitutes {placeholder} variables into a fixed template
// string. The zero value is empty; callers treat an empty template as a
// request for the default appropriate to the strategy.
type PromptTemplate struct {
	text string
}

func NewPromptTemplate(text string) PromptTemplate {
	return PromptTemplate{text: text}
}

func (t PromptTemplate) IsZero() bool {
	return t.text == ""
}

func (t PromptTemplate) Render(vars map[string]string) string {
	if len(vars) == 0 {
		return t.text
	}
	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(t.text)
}

const defaultQATemplate = `Use the following pieces of context to answer the question at the end. If you don't know the answer, just say that you don't know, don't try to make up an answer.

{context}

Question: {question}
Helpful Answer:`

const defaultRefineTemplate = `The original question is: {question}
We have an existing answer: {existing_answer}
We have the opportunity to refine the existing answer with more context below.

{context}

Given the new context, refine the original answer. If the context is not useful, return the existing answer unchanged.
Refined Answer:`

const defaultMapTemplate = `Use the following piece of context to extract any text relevant to the question. Return only the relevant text, verbatim. If none of it is relevant, return an empty response.

{context}

Question: {question}
Relevant text:`

const defaultReduceTemplate = `Given the following extracted parts of documents and a question, compose a final answer. If you don't know the answer, just say that you don't know, don't try to make up an answer.

{context}

Question: {question}
Final Answer:`

// DefaultQAPrompt is the single-pass answer prompt used when no custom
// template is supplied.
func DefaultQAPrompt() PromptTemplate {
	return PromptTemplate{text: defaultQATemplate}
}

func defaultRefinePrompt() PromptTemplate {
	return PromptTemplate{text: defaultRefineTemplate}
}

func defaultMapPrompt() PromptTemplate {
	return PromptTemplate{text: defaultMapTemplate}
}

func defaultReducePrompt() PromptTemplate {
	return PromptTemplate{text: defaultReduceTemplate}
}
