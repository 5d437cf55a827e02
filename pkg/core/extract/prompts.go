package extract

// Prompt templates for the compensation extraction calls. The field
// lists are part of the output contract: the parsing side expects the
// model to answer with these keys (or NA values), so edits here ripple
// into every consumer of Facts.

const liteSystemPrompt = `You are an expert financial analyst. Your task is to help me analyze Schedule 14A files and piece together executive compensation. Return your answer in JSON format return it as a JSON object:

**CEO name**
**Year covered**
**Names of metrics used to evaluate performance**
**Total CEO Compensation $**

If any information is not found in the provided text, mark it as "NA". Please do not start your response with "json", and instead just return the dictionary. Please only return the data for the CEO.`

const liteQuery = `What were the bonus targets for the company? This is often reported in some financial metric for the company like EBITDA, Revenue, FCF, but can include other company-specific metrics.

I would like you to return the following data from the proxy statement above.

CEO name:
Year covered:

Names of metrics used to evaluate performance.

Total CEO Compensation $:

Refrain from making any calculations. Only report what is found in the report; if something is not in the report, write NA.`

const repairSystemPrompt = `You are an expert computer scientist. Your task is to help me extract the following data in JSON format. Return your answer in JSON format return it as a JSON object:

**CEO name**
**Year covered**
**Names of metrics used to evaluate performance**
**Total CEO Compensation $**

If any information is not found in the provided text, mark it as "NA". Please do not start your response with "json", and instead just return the dictionary.`

const fullSystemPrompt = `You are an expert financial analyst. Your task is to help me analyze Schedule 14A files and piece together executive compensation.`

const fullQuery = `What were the bonus targets for the company? This is often reported in some financial metric for the company like EBITDA, Revenue, FCF, but can include other company-specific metrics.

I would like you to return the following data from the proxy statement above.

CEO name:
Year covered:

Bonus Weight from Financial Metrics (total, with a breakdown with each metric):
Bonus Weight Non-Financial:

Proxy Target for each metric (single value, in dollars).
Proxy Actual for each metric (single value, in dollars).
Financial Achievement Percentage for each metric.

Financial-Metric Achievement % (one value):
Non-Financial Achievement % (one value):

Bonus Payout $:
Total Compensation $:

Refrain from making any calculations. Only report what is found in the report; if something is not in the report, write NA. Please only return the data for the CEO.`

const stepOneSystemPrompt = `You are an expert financial analyst. Your task is to help me analyze Schedule 14A files and piece together executive compensation. Your goal is to return the metrics used for determining the bonus of the CEO. There should be 2-4 of them.`

const stepOneQuery = `What were the metrics used for the bonus targets for the company? This is often reported in some financial metric for the company like EBITDA, Revenue, FCF, but can include other company-specific metrics.

Please only return the names of the metrics used. You should also consolidate them (i.e. FCF and Adjusted FCF should be in one category). Your response should be one sentence with comma separated metrics.`

const stepSystemPrompt = `You are an expert financial analyst. Your task is to help me analyze Schedule 14A files and piece together executive compensation. Your goal is to extract data.`

const stepThreeQuery = `Looking at the executive compensation data, please fill out the data below:

CEO name:
Year covered:

Bonus Weight from Financial Metrics:
Bonus Weight Non-Financial:

Achievement percentage of financial metrics in bonus calculation:
Achievement percentage of non-financial metrics in bonus calculation:

Bonus Payout $:
Total Compensation $:

Refrain from making any calculations. Only report what is found in the report; if something is not in the report, write NA.`
