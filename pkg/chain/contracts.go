package chain

// Standard names a token contract standard.
type Standard string

const (
	StandardERC20   Standard = "erc20"
	StandardERC721  Standard = "erc721"
	StandardERC1155 Standard = "erc1155"
)

// TokenContract is a fixed token contract instance referenced by the
// reporting flow.
type TokenContract struct {
	Name     string   `json:"name"`
	Standard Standard `json:"standard"`
	Address  string   `json:"address"`
}

// Contracts lists the hard-coded token contracts, one per standard.
func Contracts() []TokenContract {
	return []TokenContract{
		{Name: "ERC20", Standard: StandardERC20, Address: "0x72df7a1734dd6cea1682f2b93634c7f7007ad511"},
		{Name: "ERC721", Standard: StandardERC721, Address: "0x65C955e31f8bd0964127a0A2F4bC84AB298c71BE"},
		{Name: "ERC1155", Standard: StandardERC1155, Address: "0xB522148B5587625610AeB9600A1716DAe2bB6DE9"},
	}
}

// ContractFor returns the fixed contract for a standard.
func ContractFor(standard Standard) (TokenContract, bool) {
	for _, c := range Contracts() {
		if c.Standard == standard {
			return c, true
		}
	}
	return TokenContract{}, false
}
