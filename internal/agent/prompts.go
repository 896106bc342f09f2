package agent

// Prompt templates for the completion service. Wording is intentionally
// minimal; every consumer tolerates malformed or missing output.

const extractJobDetailsPrompt = `Extract job posting details from the recruiter message below.
Respond with ONLY a JSON object with the keys "title", "description",
"requirements", "location" and "salary". Use null for anything not stated.

Message:
%s`

const extractFiltersPrompt = `Extract job search filters from the message below.
Respond with ONLY a JSON object with the keys "keywords", "location" and
"salary". Use empty strings for anything not stated.

Message:
%s`

const statsSelectionPrompt = `Pick the single best matching statistic for the message below.
Respond with ONLY one of: count_jobs, list_recent_jobs, count_applications,
jobs_by_location, recent_applications, top_job_types, none.

Message:
%s`

const generalResponsePrompt = `You are a recruitment platform assistant. You can create job postings,
search jobs, list applicants, rank candidates and report statistics.
Answer the recruiter's message below helpfully and briefly.

Message:
%s`

const conversationSummaryPrompt = `Summarize the conversation below in at most three sentences, keeping
job titles, locations and any decisions made.

%s`
