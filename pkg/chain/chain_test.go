package chain_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-attestform/pkg/address"
	"github.com/goliatone/go-attestform/pkg/chain"
	"github.com/goliatone/go-attestform/pkg/testsupport"
)

func TestDefaultRegistry_Golden(t *testing.T) {
	path := filepath.Join("testdata", "registry.golden.json")
	got := chain.NewDefaultRegistry().List()
	testsupport.WriteGolden(t, path, got)

	var want []chain.Chain
	testsupport.MustLoadJSON(t, path, &want)
	if diff := testsupport.CompareGolden(want, got); diff != "" {
		t.Fatalf("registry mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultRegistry(t *testing.T) {
	registry := chain.NewDefaultRegistry()

	var ids []int64
	for _, c := range registry.List() {
		ids = append(ids, c.ID)
	}
	want := []int64{chain.RootstockTestnetID, chain.PolygonAmoyID, chain.OptimismSepoliaID}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("chain ids mismatch (-want +got):\n%s", diff)
	}

	def, ok := registry.Default()
	if !ok || def.ID != chain.OptimismSepoliaID {
		t.Fatalf("expected optimism sepolia default, got %+v (ok=%v)", def, ok)
	}

	for _, c := range registry.List() {
		if c.Multicall.Address != chain.Multicall3Address {
			t.Fatalf("chain %d: unexpected multicall %q", c.ID, c.Multicall.Address)
		}
		if c.Multicall.BlockCreated == 0 {
			t.Fatalf("chain %d: missing multicall deployment block", c.ID)
		}
	}
}

func TestRootstockTestnet(t *testing.T) {
	rootstock, err := chain.NewDefaultRegistry().Get(chain.RootstockTestnetID)
	if err != nil {
		t.Fatalf("get rootstock: %v", err)
	}
	want := chain.Chain{
		ID:      31,
		Name:    "Rootstock Testnet",
		Network: "rootstock",
		NativeCurrency: chain.Currency{
			Name:     "Rootstock Smart Bitcoin",
			Symbol:   "tRBTC",
			Decimals: 18,
		},
		RPCURL:      "https://public-node.testnet.rsk.co",
		ExplorerURL: "https://explorer.testnet.rsk.co",
		Multicall:   chain.Contract{Address: chain.Multicall3Address, BlockCreated: 2771150},
		Testnet:     true,
	}
	if diff := cmp.Diff(want, rootstock); diff != "" {
		t.Fatalf("rootstock descriptor mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_RejectsDuplicatesAndInvalid(t *testing.T) {
	registry := chain.NewRegistry()
	base := chain.Defaults()[0]
	if err := registry.Register(base); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register(base); err == nil {
		t.Fatalf("expected duplicate registration error")
	}

	broken := base
	broken.ID = 5
	broken.RPCURL = ""
	if err := registry.Register(broken); err == nil {
		t.Fatalf("expected validation error for missing rpc url")
	}

	if _, err := registry.Get(42); !errors.Is(err, chain.ErrUnknownChain) {
		t.Fatalf("expected ErrUnknownChain, got %v", err)
	}
}

func TestLoadFile_MergesOverDefaults(t *testing.T) {
	registry, err := chain.LoadFile(filepath.Join("testdata", "chains.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	rootstock, err := registry.Get(chain.RootstockTestnetID)
	if err != nil {
		t.Fatalf("get rootstock: %v", err)
	}
	if rootstock.RPCURL != "https://rsk-testnet.internal" {
		t.Fatalf("rootstock rpc not overridden: %q", rootstock.RPCURL)
	}
	if rootstock.Multicall.Address != chain.Multicall3Address {
		t.Fatalf("expected multicall default applied, got %q", rootstock.Multicall.Address)
	}

	holesky, err := registry.Get(17000)
	if err != nil {
		t.Fatalf("get holesky: %v", err)
	}
	if holesky.Multicall.BlockCreated != 77 {
		t.Fatalf("unexpected holesky multicall block %d", holesky.Multicall.BlockCreated)
	}

	def, _ := registry.Default()
	if def.ID != chain.PolygonAmoyID {
		t.Fatalf("expected polygon amoy default, got %d", def.ID)
	}
	if len(registry.List()) != 4 {
		t.Fatalf("expected 4 chains, got %d", len(registry.List()))
	}
}

func TestLoad_UnknownDefault(t *testing.T) {
	_, err := chain.Load([]byte("default: 99\n"), "inline")
	if !errors.Is(err, chain.ErrUnknownChain) {
		t.Fatalf("expected ErrUnknownChain, got %v", err)
	}
}

func TestContracts(t *testing.T) {
	contracts := chain.Contracts()
	if len(contracts) != 3 {
		t.Fatalf("expected three fixed contracts, got %d", len(contracts))
	}
	for _, c := range contracts {
		if !address.Valid(c.Address) {
			t.Fatalf("contract %s has invalid address %q", c.Name, c.Address)
		}
	}
	want := map[chain.Standard]string{
		chain.StandardERC20:   "0x72df7a1734dd6cea1682f2b93634c7f7007ad511",
		chain.StandardERC721:  "0x65C955e31f8bd0964127a0A2F4bC84AB298c71BE",
		chain.StandardERC1155: "0xB522148B5587625610AeB9600A1716DAe2bB6DE9",
	}
	for std, addr := range want {
		got, ok := chain.ContractFor(std)
		if !ok {
			t.Fatalf("missing contract for %s", std)
		}
		if got.Address != addr {
			t.Fatalf("%s: got %q, want %q", std, got.Address, addr)
		}
	}
}

func TestExplorerAddressURL(t *testing.T) {
	c := chain.Defaults()[0]
	got := c.ExplorerAddressURL("0xabc")
	if got != "https://optimism-sepolia.blockscout.com/address/0xabc" {
		t.Fatalf("unexpected explorer url %q", got)
	}
	c.ExplorerURL = ""
	if c.ExplorerAddressURL("0xabc") != "" {
		t.Fatalf("expected empty url without explorer")
	}
}
