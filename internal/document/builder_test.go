package document

import (
	"testing"

	"github.com/smartfind/smartfind-go/internal/catalog"
)

func TestBuild(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		row  catalog.Row
		want string
	}{
		{
			name: "all sections",
			row: catalog.Row{
				ProductName:        "Wooden Blocks",
				ProductDescription: "Classic stacking blocks.",
				ProductInformation: "Material: beech wood",
			},
			want: "### Product Name\nWooden Blocks\n\n" +
				"### Description\nClassic stacking blocks.\n\n" +
				"### Product Information\nMaterial: beech wood",
		},
		{
			name: "description falls back to secondary field",
			row: catalog.Row{
				ProductName: "Toy Car",
				Description: "Die-cast racer.",
			},
			want: "### Product Name\nToy Car\n\n### Description\nDie-cast racer.",
		},
		{
			name: "primary description wins over secondary",
			row: catalog.Row{
				ProductName:        "Kite",
				ProductDescription: "Primary text.",
				Description:        "Secondary text.",
			},
			want: "### Product Name\nKite\n\n### Description\nPrimary text.",
		},
		{
			name: "absent sections are omitted with their headings",
			row:  catalog.Row{ProductInformation: "Weight: 200g"},
			want: "### Product Information\nWeight: 200g",
		},
		{
			name: "whitespace-only fields are treated as absent",
			row: catalog.Row{
				ProductName:        "  Puzzle  ",
				ProductDescription: "   ",
			},
			want: "### Product Name\nPuzzle",
		},
		{
			name: "empty row",
			row:  catalog.Row{},
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Build(tc.row); got != tc.want {
				t.Errorf("Build:\ngot:  %q\nwant: %q", got, tc.want)
			}
		})
	}
}
