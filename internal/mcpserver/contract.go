package mcpserver

// PostFormatContract describes the canonical post file format that LLM
// consumers should follow when creating content.
const PostFormatContract = `# Skald Post Format Contract

Every post stored in Skald is a Markdown file with YAML front matter, one
file per slug, named ` + "`<slug>.md`" + ` under the content root.

## Structure

` + "```" + `markdown
---
title: Human-readable title        # REQUIRED - slug source at creation
date: 2026-01-15T10:30:00Z          # set by the store, do not supply
draft: true                         # publication flag
slug: human-readable-title          # derived, immutable
excerpt: One-sentence teaser        # OPTIONAL
category: news                      # OPTIONAL
tags:                               # OPTIONAL - YAML list
  - tag-one
author: user-id                     # set by the store
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. **The slug is derived from the title once** (lowercase, non-alphanumeric
   runs collapsed to a single hyphen, no leading/trailing hyphen) and never
   changes afterwards, even when the title is edited.
2. **Posts created over MCP are always drafts.** Publishing is an editorial
   decision made in the admin UI; it triggers a rebuild of the public site.
3. **Tags** are lowercase, kebab-case (e.g. ` + "`release-notes`" + `).
4. **Encoding** is UTF-8 with a trailing newline.
5. **Do not write files directly**; use the create_post tool so the store
   can derive the slug, reject collisions, and keep the file format valid.
`
