package chain

// Chain ids for the built-in networks.
const (
	OptimismSepoliaID  int64 = 11155420
	PolygonAmoyID      int64 = 80002
	RootstockTestnetID int64 = 31
)

// Defaults returns the built-in descriptors: two public test networks and the
// Rootstock testnet, which is not part of the standard wallet chain list.
// The first entry is the registry default.
func Defaults() []Chain {
	return []Chain{
		{
			ID:      OptimismSepoliaID,
			Name:    "OP Sepolia",
			Network: "op-sepolia",
			NativeCurrency: Currency{
				Name:     "Sepolia Ether",
				Symbol:   "ETH",
				Decimals: 18,
			},
			RPCURL:      "https://sepolia.optimism.io",
			ExplorerURL: "https://optimism-sepolia.blockscout.com",
			Multicall:   Contract{Address: Multicall3Address, BlockCreated: 1620204},
			Testnet:     true,
		},
		{
			ID:      PolygonAmoyID,
			Name:    "Polygon Amoy",
			Network: "polygon-amoy",
			NativeCurrency: Currency{
				Name:     "POL",
				Symbol:   "POL",
				Decimals: 18,
			},
			RPCURL:      "https://rpc-amoy.polygon.technology",
			ExplorerURL: "https://amoy.polygonscan.com",
			Multicall:   Contract{Address: Multicall3Address, BlockCreated: 3127388},
			Testnet:     true,
		},
		{
			ID:      RootstockTestnetID,
			Name:    "Rootstock Testnet",
			Network: "rootstock",
			NativeCurrency: Currency{
				Name:     "Rootstock Smart Bitcoin",
				Symbol:   "tRBTC",
				Decimals: 18,
			},
			RPCURL:      "https://public-node.testnet.rsk.co",
			ExplorerURL: "https://explorer.testnet.rsk.co",
			Multicall:   Contract{Address: Multicall3Address, BlockCreated: 2771150},
			Testnet:     true,
		},
	}
}
