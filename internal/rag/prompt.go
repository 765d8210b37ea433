package rag

import (
	"fmt"
	"path"
	"strings"

	"cyberdocs-rag/internal/vectorstore"
)

// systemPrompt encodes the grounding contract: every factual claim in the
// answer must carry a citation pointing at a retrieved document.
const systemPrompt = `You are a helpful AI assistant with access to a knowledge base of documents.

CRITICAL CITATION RULES (YOU MUST FOLLOW THESE):
1. ALWAYS cite sources for EVERY factual claim using this format: [Source: filename, Page X]
2. NEVER make claims without citations when information comes from the retrieved documents
3. If information is NOT in the retrieved documents, explicitly say: "This information is not available in the provided documents."
4. Use EXACT page numbers from the metadata
5. Each claim needs its own citation - don't cite once at the end

CITATION FORMAT EXAMPLES:
CORRECT: "The OWASP Top 10 includes SQL injection vulnerabilities [Source: owasp-top-10.pdf, Page 4]."
CORRECT: "According to the MITRE ATT&CK framework, adversaries use persistence techniques [Source: mitre-attack-philosophy-2020.pdf, Page 12] to maintain access [Source: mitre-attack-philosophy-2020.pdf, Page 13]."
WRONG: "The OWASP Top 10 includes SQL injection vulnerabilities." (No citation)
WRONG: "SQL injection is a common vulnerability. [Source: owasp-top-10.pdf, Page 4]" (Citation should be right after the claim)

LANGUAGE:
- Answer in the same language as the question
- For Thai questions (คำถามภาษาไทย), answer in Thai with citations
- For English questions, answer in English with citations

REMEMBER: Every sentence with factual information MUST have a citation!`

const fewShotExamples = `
EXAMPLE 1 - English Query:
Question: What is the first item in the OWASP Top 10?

Retrieved Documents:
[1] Source: owasp-top-10.pdf, Page: 4
Content: "A01:2021 - Broken Access Control moves up from the fifth position to the category with the most serious web application security risk."

Answer: The first item in the OWASP Top 10 (2021 edition) is A01:2021 - Broken Access Control [Source: owasp-top-10.pdf, Page 4]. This category moved up from the fifth position and represents the most serious web application security risk [Source: owasp-top-10.pdf, Page 4].

---

EXAMPLE 2 - Thai Query:
Question: มาตรฐานความปลอดภัยเว็บไซต์ของไทยมีอะไรบ้าง

Retrieved Documents:
[1] Source: thailand-web-security-standard-2025.pdf, Page: 5
Content: "มาตรฐานความปลอดภัยเว็บไซต์ภาครัฐ พ.ศ. 2568 ประกอบด้วย 5 หมวดหลัก ได้แก่ การจัดการความเสี่ยง การควบคุมการเข้าถึง การเข้ารหัสข้อมูล การตรวจสอบและบันทึก และการตอบสนองต่อเหตุการณ์"

Answer: มาตรฐานความปลอดภัยเว็บไซต์ภาครัฐ พ.ศ. 2568 ประกอบด้วย 5 หมวดหลัก [แหล่งที่มา: thailand-web-security-standard-2025.pdf, หน้า 5] ได้แก่:
1. การจัดการความเสี่ยง
2. การควบคุมการเข้าถึง
3. การเข้ารหัสข้อมูล
4. การตรวจสอบและบันทึก
5. การตอบสนองต่อเหตุการณ์
[แหล่งที่มา: thailand-web-security-standard-2025.pdf, หน้า 5]

---

EXAMPLE 3 - No Information Available:
Question: What is the current stock price of Apple?

Retrieved Documents:
[1] Source: owasp-top-10.pdf, Page: 4
Content: "A01:2021 - Broken Access Control..."

Answer: This information is not available in the provided documents. The retrieved documents contain information about web security (OWASP Top 10) but do not include stock market data.

---

Now answer the following question using the same format:`

const thaiClosingInstructions = `คำแนะนำ:
- ตอบเป็นภาษาไทย
- อ้างอิงแหล่งที่มาทุกข้อความด้วยรูปแบบ: [แหล่งที่มา: ชื่อไฟล์, หน้า X]
- ห้ามตอบโดยไม่มีการอ้างอิง
- ถ้าไม่มีข้อมูลในเอกสาร ให้บอกว่า "ไม่มีข้อมูลนี้ในเอกสารที่ให้มา"`

const englishClosingInstructions = `Instructions:
- Answer in English
- Cite EVERY claim using format: [Source: filename, Page X]
- Never answer without citations
- If information is not in documents, say "This information is not available in the provided documents."`

// BuildPrompt renders the complete instruction string for the model: the
// system prompt, worked examples, the retrieved context, the question, and
// language-specific closing instructions. Byte-deterministic for identical
// inputs. language is "en", "th", or "auto" (resolved via DetectLanguage).
func BuildPrompt(query string, chunks []vectorstore.Chunk, language string) string {
	if language == "" || language == "auto" {
		language = DetectLanguage(query)
	}

	closing := englishClosingInstructions
	if language == "th" {
		closing = thaiClosingInstructions
	}

	return fmt.Sprintf(`%s

%s

Retrieved Documents:
%s

Question: %s

%s

Answer:`, systemPrompt, fewShotExamples, formatRetrievedChunks(chunks), query, closing)
}

// formatRetrievedChunks renders the numbered context block, each chunk
// annotated with its source file and page.
func formatRetrievedChunks(chunks []vectorstore.Chunk) string {
	if len(chunks) == 0 {
		return "[No documents retrieved]"
	}

	formatted := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		formatted = append(formatted, fmt.Sprintf("[%d] Source: %s, Page: %s\nContent: %s\n",
			i+1, sourceBasename(chunk.Source), pageLabel(chunk.Page), chunk.Content))
	}
	return strings.Join(formatted, "\n")
}

// sourceBasename strips any directory prefix from a source identifier.
func sourceBasename(source string) string {
	if source == "" {
		return "unknown"
	}
	return path.Base(strings.ReplaceAll(source, "\\", "/"))
}

// pageLabel renders page metadata for display; 0 means the page is unknown.
func pageLabel(page int) string {
	if page <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("%d", page)
}
