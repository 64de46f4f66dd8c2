package wallet

import "github.com/goliatone/go-attestform/pkg/address"

// ConnectLabel is shown on the control while no account is connected.
const ConnectLabel = "Connect Wallet"

// ChainOption is one entry of the chain switcher.
type ChainOption struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Testnet  bool   `json:"testnet"`
	Selected bool   `json:"selected"`
}

// ControlView is the render model of the navbar wallet control.
type ControlView struct {
	Connected      bool          `json:"connected"`
	Label          string        `json:"label"`
	Address        string        `json:"address,omitempty"`
	DisplayAddress string        `json:"displayAddress,omitempty"`
	ExplorerURL    string        `json:"explorerUrl,omitempty"`
	ChainID        int64         `json:"chainId"`
	ChainName      string        `json:"chainName"`
	ChainIcon      bool          `json:"chainIcon"`
	ShowBalance    bool          `json:"showBalance"`
	Chains         []ChainOption `json:"chains"`
}

// View builds the control's render model. Balances are never shown.
func (c *Connection) View() ControlView {
	c.mu.RLock()
	addr, chainID := c.address, c.chainID
	c.mu.RUnlock()

	view := ControlView{
		Connected:   addr != "",
		Label:       ConnectLabel,
		Address:     addr,
		ChainID:     chainID,
		ChainIcon:   true,
		ShowBalance: false,
	}
	if selected, err := c.chains.Get(chainID); err == nil {
		view.ChainName = selected.Name
		if addr != "" {
			view.ExplorerURL = selected.ExplorerAddressURL(addr)
		}
	}
	if addr != "" {
		view.DisplayAddress = address.Format(addr)
		view.Label = view.DisplayAddress
	}
	for _, ch := range c.chains.List() {
		view.Chains = append(view.Chains, ChainOption{
			ID:       ch.ID,
			Name:     ch.Name,
			Testnet:  ch.Testnet,
			Selected: ch.ID == chainID,
		})
	}
	return view
}
