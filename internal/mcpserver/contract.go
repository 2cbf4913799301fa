package mcpserver

// PuzzleFormatContract describes the puzzle definition format that LLM
// consumers should follow when importing puzzles.
const PuzzleFormatContract = `# Grille Puzzle Format Contract

A puzzle is one JSON (or YAML) document describing the grid and its entries.

## Structure

` + "```" + `json
{
  "id": "quick-16412",
  "name": "Quick crossword No 16,412",
  "crosswordType": "quick",
  "dimensions": {"cols": 13, "rows": 13},
  "entries": [
    {
      "id": "1-across",
      "number": 1,
      "humanNumber": "1",
      "clue": "Feline pet (3)",
      "direction": "across",
      "length": 3,
      "position": {"x": 0, "y": 0},
      "group": ["1-across"],
      "separatorLocations": {",": [], "-": []},
      "solution": "CAT"
    }
  ]
}
` + "```" + `

## Rules

1. **` + "`" + `id` + "`" + ` is required** and unique across the catalog. Importing the same id twice fails.
2. **Coordinates** are zero based. ` + "`" + `x` + "`" + ` is the column, ` + "`" + `y` + "`" + ` the row.
3. **Every entry must fit the grid.** An across entry at x with length n needs x+n <= cols.
4. **` + "`" + `direction` + "`" + `** is ` + "`" + `across` + "`" + ` or ` + "`" + `down` + "`" + `.
5. **Groups** join entries that form one answer split across the grid. Every id in a
   group must exist and the first id is the group leader. Omit ` + "`" + `group` + "`" + ` for a
   standalone entry.
6. **Separators** are offsets into the whole group answer. A separator at offset k sits
   before the (k+1)th letter. Use ` + "`" + `,` + "`" + ` for word breaks and ` + "`" + `-` + "`" + ` for hyphens.
7. **Solutions** are upper case and exactly ` + "`" + `length` + "`" + ` letters. Leave them out when the
   answers are not published yet; checking is then unavailable.
8. **Cells** covered by no entry are blocks.
`
