package apply

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"applybot/internal/config"
)

// PromptInput carries everything the task prompt embeds.
type PromptInput struct {
	URL             string
	Candidate       config.Candidate
	ResumePDF       string // empty when the file is missing
	CoverLetterPath string // optional
	DryRun          bool
}

func candidateBlock(c config.Candidate) string {
	return fmt.Sprintf(`CANDIDATE INFORMATION:
- Full Name: %s
- Email: %s
- Phone: %s
- Location: %s
- Current Title: %s
- Experience: %s
- Work Authorization: %s`,
		c.Name, c.Email, c.Phone, c.Location, c.Title, c.Experience, c.Authorization)
}

func (in PromptInput) resumeNote() string {
	if in.ResumePDF != "" {
		return "Resume PDF to upload: " + in.ResumePDF
	}
	return "No resume file found."
}

func (in PromptInput) coverLetterNote() string {
	if in.CoverLetterPath == "" {
		return ""
	}
	return "\nCover letter to upload if there is a field for it: " + in.CoverLetterPath
}

func (in PromptInput) submitInstruction() string {
	if in.DryRun {
		return "Do NOT submit the form. Stop just before the final submit button and report what you see."
	}
	return "Submit the application. If there is a final confirmation page, report what it says."
}

// BuildTaskPrompt renders the instructions handed to the browser agent for
// a fresh application run.
func BuildTaskPrompt(in PromptInput) string {
	return fmt.Sprintf(`Apply for the job at: %s

You are applying on behalf of %s, a %s based in %s.

%s

INSTRUCTIONS:
1. Navigate to the job posting URL
2. Find and click the "Apply" button (or equivalent)
3. Fill in ALL required fields using the candidate information above
4. %s
5. Upload the resume when the form has a file upload field%s
6. If there is a CAPTCHA, solve it using the solve_captcha_paid action
7. If the site sends a verification code to email, use the check_email_for_verification_code action to retrieve it, then enter the code
8. %s

IMPORTANT:
- If the application is through an external ATS (Greenhouse, Lever, Workday, etc.), follow the redirect
- If asked to create an account, do so with the email above
- If the site requires email verification, use the check_email_for_verification_code action. You can pass a sender_keyword like "greenhouse" or "workday" to filter. The action spawns a background email checker and polls for up to 5 minutes. The user may also provide the code manually.
- For any field you're unsure about, use reasonable defaults for a senior software engineer
- If a field requires information not provided, leave it blank or skip it
- Take note of any confirmation number or reference ID after submission

Report back:
- Company name and job title
- Whether the application was submitted successfully
- Any confirmation number or reference
- Any fields that couldn't be filled
- Any errors encountered`,
		in.URL,
		in.Candidate.Name, in.Candidate.Title, in.Candidate.Location,
		candidateBlock(in.Candidate),
		in.resumeNote(), in.coverLetterNote(),
		in.submitInstruction(),
	)
}

// BuildResumeTaskPrompt renders the instructions for resuming a previously
// started application; prevDir is the attempt directory holding the prior
// result.json, if any.
func BuildResumeTaskPrompt(in PromptInput, prevDir string) string {
	previousContext := ""
	if prevDir != "" {
		if b, err := os.ReadFile(resultPath(prevDir)); err == nil {
			var prev Result
			if json.Unmarshal(b, &prev) == nil {
				agentResult := prev.AgentResult
				if len(agentResult) > 500 {
					agentResult = agentResult[:500]
				}
				if agentResult == "" {
					agentResult = "No result recorded"
				}
				errs := "None"
				if len(prev.Errors) > 0 {
					errs = strings.Join(prev.Errors, "; ")
				}
				status := prev.Status
				if status == "" {
					status = "unknown"
				}
				previousContext = fmt.Sprintf(`
PREVIOUS ATTEMPT CONTEXT:
- Previous status: %s
- Previous result: %s
- Errors from previous attempt: %s
`, status, agentResult, errs)
			}
		}
	}

	return fmt.Sprintf(`RESUME a previously started job application at: %s

IMPORTANT: You are RESUMING an application that was previously started but did not complete.
Your browser session has been restored with saved cookies and login state from the previous attempt.
You should already be logged into the ATS (Greenhouse, Lever, Workday, etc.) if an account was created.
%s
INSTRUCTIONS FOR RESUME:
1. Navigate to the job posting URL: %s
2. Check if you are already logged in or if the application is partially filled
3. If the application form is already partially completed, continue from where it left off
4. If you need to re-enter the application, find and click the "Apply" button
5. Do NOT create a duplicate account -- check if you are already logged in first
6. If an email verification is pending, use check_email_for_verification_code to get the code. This spawns a background email checker and polls for up to 5 minutes.
7. Fill in any remaining required fields using the candidate information below
8. %s
9. Upload the resume when the form has a file upload field%s
10. If there is a CAPTCHA, solve it using the solve_captcha_paid action
11. %s

You are applying on behalf of %s, a %s based in %s.

%s

IMPORTANT:
- If the previous attempt created an account, you should already be logged in via saved cookies
- If the site requires email verification, use the check_email_for_verification_code action. You can pass a sender_keyword like "greenhouse" or "workday" to filter. The action spawns a background email checker and polls for up to 5 minutes. The user may also provide the code manually.
- For any field you're unsure about, use reasonable defaults for a senior software engineer
- If a field requires information not provided, leave it blank or skip it
- Take note of any confirmation number or reference ID after submission

Report back:
- Company name and job title
- Whether the application was submitted successfully
- Any confirmation number or reference
- Any fields that couldn't be filled
- Any errors encountered`,
		in.URL,
		previousContext,
		in.URL,
		in.resumeNote(), in.coverLetterNote(),
		in.submitInstruction(),
		in.Candidate.Name, in.Candidate.Title, in.Candidate.Location,
		candidateBlock(in.Candidate),
	)
}
