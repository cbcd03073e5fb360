// Package prompt assembles the instructions sent to the language model and
// extracts the actionable section from its answer.
//
// Every Template is paired with the Section it asks the model to emit. The
// coaching template ends with an "Alpha:" and a "Beta:" rewrite and files
// the Beta one; the inference template ends with a "Template:" reply that
// is filed instead. Changing the wording of a template without updating its
// section label breaks extraction, so both travel together and carry one
// version number.
//
// Building a prompt performs no I/O:
//
//	text, err := prompt.BuildCoaching(thread, draft, goal)
//	if err != nil {
//	    return err // *prompt.MissingInputError
//	}
//	...
//	body, err := prompt.Coaching.Section.Extract(output)
//	if err != nil {
//	    return err // *prompt.ExtractionError
//	}
package prompt
