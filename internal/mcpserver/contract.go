package mcpserver

// CardFormatContract describes the canonical card file format that
// LLM consumers should follow when creating or updating cards.
const CardFormatContract = `# Dagaz Card Format Contract

Every card stored in Dagaz is one Markdown file and MUST follow this structure.

## Structure

` + "```" + `markdown
---
title: Human-readable title        # REQUIRED – unique across the whole board
column: todo                        # REQUIRED – id of a column declared in board.md
position: m                         # OPTIONAL – opaque ordering token, sorted as a string
created: 2026-08-25T10:00:00Z       # REQUIRED – RFC 3339 timestamp
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. **YAML frontmatter is mandatory.** The ` + "```" + `---` + "```" + ` fences must be the first
   thing in the file (no leading blank lines).
2. **` + "`" + `title` + "`" + ` is unique across the board**, not just within a column. Two cards
   may never share a title even in different columns.
3. **` + "`" + `column` + "`" + ` must name a column id** from the board configuration. The
   directory a card lives in is authoritative; the frontmatter field follows it.
4. **File names** are slugs derived from the title: lowercase ASCII letters,
   digits, and hyphens, ending with ` + "`" + `.md` + "`" + `. Editing only the body keeps the
   file name; changing the title renames the file.
5. **Ordering** within a column compares ` + "`" + `position` + "`" + ` tokens as plain strings.
6. **Encoding** is UTF-8 with a trailing newline.
7. **Archived cards** live under ` + "`" + `archive/` + "`" + ` with a ` + "`" + `yyyy-MM-dd-` + "`" + ` date prefix
   and keep their original column in the frontmatter for restoration.

## Example

` + "```" + `markdown
---
title: Fix the login timeout
column: doing
position: mm
created: 2026-08-25T10:00:00Z
---

Session cookies expire after 5 minutes instead of 30.

- [ ] reproduce with a fresh profile
- [ ] check the refresh handler
` + "```" + `
`
