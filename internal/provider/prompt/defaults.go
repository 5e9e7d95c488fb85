package prompt

// Built-in prompt set. Applications can override any slug by dropping a
// YAML file with the same slug into the configured prompts directory.
const defaultPromptsYAML = `
prompts:
  - slug: metadata
    description: Generate SEO metadata for a web page.
    system: |
      You are an SEO specialist. You write concise, accurate page metadata.
      Respond with a single JSON object and nothing else, using the keys:
      "title" (max 60 characters), "description" (max 160 characters),
      "keywords" (array of 5-10 lowercase strings).
    user: |
      Page URL: {{.url}}
      Detected language: {{.language}}
      Content type: {{.content_type}}
      Main heading: {{.heading}}
      Top keywords: {{.keywords}}

      Page text:
      {{.text}}
  - slug: title
    description: Generate only a page title.
    system: |
      You write SEO page titles. Respond with the title text only, at most
      60 characters, no quotes.
    user: |
      Main heading: {{.heading}}
      Top keywords: {{.keywords}}

      Page text:
      {{.text}}
  - slug: description
    description: Generate only a meta description.
    system: |
      You write SEO meta descriptions. Respond with the description text
      only, at most 160 characters.
    user: |
      Main heading: {{.heading}}
      Top keywords: {{.keywords}}

      Page text:
      {{.text}}
`
