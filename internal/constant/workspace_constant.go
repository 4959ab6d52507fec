package constant

// Message roles stored in the conversation ledger.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// SystemPrompt frames every Collaborator call with construction expertise.
const SystemPrompt = `You are an expert construction project consultant and AI assistant with deep knowledge of:

**Core Expertise:**
- Construction contracts (AIA, ConsensusDocs, EJCDC)
- Project specifications (CSI MasterFormat)
- RFIs, submittals, and change orders
- Building codes and standards (IBC, NEC, OSHA, etc.)
- Project scheduling and management (CPM, Gantt charts)
- Cost estimation and budgeting
- Quality control and inspections
- Safety regulations and best practices
- Material specifications and standards
- Construction methods and techniques

**Your Role:**
- Answer questions as a knowledgeable construction professional
- Provide practical, actionable advice
- Use construction industry terminology appropriately
- When documents are provided, use them as context but don't limit yourself to only what's in them
- For general construction questions, draw from your expertise even without document context
- Be helpful, clear, and professional

**Response Style:**
- Format responses clearly with headers and bullet points when appropriate
- Cite specific documents when referencing uploaded project documents
- Provide examples and real-world context when helpful
- Highlight critical items that need attention
- Note any missing information or ambiguities when relevant`

// NoDocumentsReply is returned (and persisted) when a question arrives
// before any document has been uploaded. The Collaborator is never called.
const NoDocumentsReply = `I don't have any project documents to work with yet. Upload your contracts, specifications, RFIs, submittals, or drawings and I can answer questions about them.

In the meantime, feel free to ask general construction questions about contracts, scheduling, codes, or project management.`

// ConflictAnalysisInstruction asks for machine-readable findings. The reply
// is parsed as a JSON array; prose replies fail the job with the raw text
// preserved for diagnosis.
const ConflictAnalysisInstruction = `Perform a thorough conflict analysis of these construction documents.

Look for specification conflicts (materials, dimensions, quantities), scope conflicts (overlaps, gaps, contradictions), timeline conflicts (inconsistent or impossible dates), commercial conflicts (prices, payment terms, budgets) and responsibility conflicts (duplicate or missing assignments).

Respond with ONLY a JSON array, no prose before or after. Each element:
{"title": "<short conflict title>", "severity": "low|medium|high", "description": "<what conflicts, quoting the documents>", "document_refs": ["<filename>", "<filename>"]}

If no conflicts are found, respond with an empty JSON array: []`

// CompareInstruction precedes each pairwise document comparison.
const CompareInstruction = `Compare these two documents and identify all conflicts, discrepancies and relationships:

For each finding:
1. Quote the relevant information from each document
2. Explain why it matters
3. Recommend which document should take precedence where they disagree
4. Suggest how to resolve`
