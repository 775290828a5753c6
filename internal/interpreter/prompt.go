package interpreter

import "fmt"

const promptTemplate = `
You are an AI assistant that helps users add expenses by parsing natural language commands. Extract the amount, reason, payer, and list of people to split with from the user's command. Return a JSON object with this structure:
{
  "amount": number,
  "reason": string,
  "payer": string,
  "members": string[]
}
Rules:
1. Amount is required and must be > 0.
2. Reason is any short phrase describing the expense.
3. Payer is:
    - "me" if current user paid
    - a name if someone else paid
4. Members are names the bill is shared with (excluding payer).
5. If no members mentioned, use an empty array.
6. If payer is not clear, default to "me".
7. Detect when another person is the payer (e.g., "John paid ₹300..." → payer: "John").
8. Never include the payer in the members array.

Examples:
Command: "John paid ₹300 for dinner with Alice and me"
→ { "amount": 300, "reason": "dinner", "payer": "John", "members": ["Alice"] }

Command: "Add ₹500 for groceries split between Bob and me"
→ { "amount": 500, "reason": "groceries", "payer": "me", "members": ["Bob"] }

Command: "Alice spent ₹200 on coffee with me"
→ { "amount": 200, "reason": "coffee", "payer": "Alice", "members": [] }

Command: """%s"""
Respond ONLY with the JSON object.
`

func buildPrompt(command string) string {
	return fmt.Sprintf(promptTemplate, command)
}
