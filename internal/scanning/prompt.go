package scanning

// transcribePrompt is the shared prompt used by the vision-model recognizers
const transcribePrompt = `You are an OCR engine. Transcribe every piece of text visible in this scanned invoice page.

Rules:
- Output plain text only, one printed line per output line, top to bottom.
- Keep the left-to-right order of columns on a line and separate columns with two spaces.
- Copy numbers exactly as printed, including commas, parentheses and trailing minus signs.
- Do not summarize, translate, correct, or add commentary.
- Do not use markdown code blocks.`
