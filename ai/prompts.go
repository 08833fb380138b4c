package ai

// Prompts shared across all providers.

const enhancePromptContext = `You are a helpful assistant that rewrites user questions so they are better understood by Cortex Analyst,
which generates SQL based on a semantic model.

Here is the semantic model (YAML format) defining the available tables, fields, and relationships:
%s

Your job is to take the user's question and rephrase it into a clear, structured analytical request that:
- Uses fully-qualified field names (e.g. ` + "`TABLE.COLUMN`" + `) wherever possible
- Hints at how tables should be joined using keys defined in the model
- Requests aggregations like counts, averages, or groupings where relevant
- Preserves all the original analytical intent

Use clear language and help Cortex Analyst build the most accurate query.
`

const enhancePrompt = "%s\nUser Question: %s\nRephrased Question:"

const summaryPrompt = "A customer asked: %s\n\n" +
	"Based on the analysis, here is the output:\n%s\n\n" +
	"Please provide a concise summary of the data in the sample above. " +
	"Do not write an email or respond to the customer — just summarize the key insights from the data only."

// RetrievalPrompt asks a model to answer from retrieved context only.
// Arguments: context, question.
const RetrievalPrompt = `Use the following pieces of context to answer the question at the end. If you don't know the answer, just say that you don't know, don't try to make up an answer.

%s

Question: %s
Helpful Answer:`
