package registry

// ABI fragments for the protocol contracts the dispatcher can address.
const (
	MarketAccessControllerABI = `[
		{"name":"getAddress","type":"function","stateMutability":"view","inputs":[{"name":"id","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
		{"name":"queryAccessControlMask","type":"function","stateMutability":"view","inputs":[{"name":"addr","type":"address"},{"name":"filter","type":"uint256"}],"outputs":[{"name":"flags","type":"uint256"}]},
		{"name":"grantRoles","type":"function","stateMutability":"nonpayable","inputs":[{"name":"addr","type":"address"},{"name":"flags","type":"uint256"}],"outputs":[]},
		{"name":"revokeRoles","type":"function","stateMutability":"nonpayable","inputs":[{"name":"addr","type":"address"},{"name":"flags","type":"uint256"}],"outputs":[]},
		{"name":"setTemporaryAdmin","type":"function","stateMutability":"nonpayable","inputs":[{"name":"admin","type":"address"},{"name":"expiryBlocks","type":"uint256"}],"outputs":[]},
		{"name":"getTemporaryAdmin","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"admin","type":"address"},{"name":"expiresAtBlock","type":"uint256"}]},
		{"name":"renounceTemporaryAdmin","type":"function","stateMutability":"nonpayable","inputs":[],"outputs":[]},
		{"name":"callWithRoles","type":"function","stateMutability":"nonpayable","inputs":[{"name":"params","type":"tuple[]","components":[{"name":"accessFlags","type":"uint256"},{"name":"callFlag","type":"uint256"},{"name":"callAddr","type":"address"},{"name":"callData","type":"bytes"}]}],"outputs":[{"name":"result","type":"bytes[]"}]},
		{"name":"getPriceOracle","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"setPriceOracle","type":"function","stateMutability":"nonpayable","inputs":[{"name":"newAddress","type":"address"}],"outputs":[]},
		{"name":"owner","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]}
	]`

	AddressesProviderRegistryABI = `[
		{"name":"getAddressesProvidersList","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address[]"}]},
		{"name":"getAddressesProviderIdByAddress","type":"function","stateMutability":"view","inputs":[{"name":"provider","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"registerAddressesProvider","type":"function","stateMutability":"nonpayable","inputs":[{"name":"provider","type":"address"},{"name":"id","type":"uint256"}],"outputs":[]},
		{"name":"unregisterAddressesProvider","type":"function","stateMutability":"nonpayable","inputs":[{"name":"provider","type":"address"}],"outputs":[]}
	]`

	OracleRouterABI = `[
		{"name":"getAssetPrice","type":"function","stateMutability":"view","inputs":[{"name":"asset","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"getAssetsPrices","type":"function","stateMutability":"view","inputs":[{"name":"assets","type":"address[]"}],"outputs":[{"name":"","type":"uint256[]"}]},
		{"name":"getSourceOfAsset","type":"function","stateMutability":"view","inputs":[{"name":"asset","type":"address"}],"outputs":[{"name":"","type":"address"}]},
		{"name":"getAssetSources","type":"function","stateMutability":"view","inputs":[{"name":"assets","type":"address[]"}],"outputs":[{"name":"","type":"address[]"}]},
		{"name":"setAssetSources","type":"function","stateMutability":"nonpayable","inputs":[{"name":"assets","type":"address[]"},{"name":"sources","type":"address[]"}],"outputs":[]},
		{"name":"getFallbackOracle","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"setFallbackOracle","type":"function","stateMutability":"nonpayable","inputs":[{"name":"fallbackOracle","type":"address"}],"outputs":[]}
	]`

	StaticPriceOracleABI = `[
		{"name":"getAssetPrice","type":"function","stateMutability":"view","inputs":[{"name":"asset","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"setAssetPrice","type":"function","stateMutability":"nonpayable","inputs":[{"name":"assets","type":"address[]"},{"name":"prices","type":"uint256[]"}],"outputs":[]}
	]`

	ProtocolDataProviderABI = `[
		{"name":"getAllTokenDescriptions","type":"function","stateMutability":"view","inputs":[{"name":"includeAssets","type":"bool"}],"outputs":[{"name":"tokens","type":"tuple[]","components":[{"name":"token","type":"address"},{"name":"priceToken","type":"address"},{"name":"rewardPool","type":"address"},{"name":"tokenSymbol","type":"string"},{"name":"underlying","type":"address"},{"name":"decimals","type":"uint8"},{"name":"tokenType","type":"uint8"},{"name":"active","type":"bool"},{"name":"frozen","type":"bool"}]},{"name":"tokenCount","type":"uint256"}]},
		{"name":"getReserveList","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address[]"}]}
	]`

	RewardConfiguratorABI = `[
		{"name":"list","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address[]"}]},
		{"name":"getNamedRewardPools","type":"function","stateMutability":"view","inputs":[{"name":"names","type":"string[]"}],"outputs":[{"name":"pools","type":"address[]"}]},
		{"name":"getDefaultController","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]}
	]`

	ManagedRewardPoolABI = `[
		{"name":"getPoolName","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
		{"name":"getRate","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"setRate","type":"function","stateMutability":"nonpayable","inputs":[{"name":"rate","type":"uint256"}],"outputs":[]},
		{"name":"addRewardProvider","type":"function","stateMutability":"nonpayable","inputs":[{"name":"provider","type":"address"},{"name":"token","type":"address"}],"outputs":[]},
		{"name":"removeRewardProvider","type":"function","stateMutability":"nonpayable","inputs":[{"name":"provider","type":"address"}],"outputs":[]}
	]`

	PermitFreezerRewardPoolABI = `[
		{"name":"getPoolName","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
		{"name":"addRewardProvider","type":"function","stateMutability":"nonpayable","inputs":[{"name":"provider","type":"address"},{"name":"token","type":"address"}],"outputs":[]},
		{"name":"setMeltDownAt","type":"function","stateMutability":"nonpayable","inputs":[{"name":"at","type":"uint32"}],"outputs":[]},
		{"name":"getMeltDownAt","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint32"}]}
	]`

	RewardBoosterABI = `[
		{"name":"updateBaseline","type":"function","stateMutability":"nonpayable","inputs":[{"name":"baseline","type":"uint256"}],"outputs":[]},
		{"name":"setBaselinePercentagesAndRate","type":"function","stateMutability":"nonpayable","inputs":[{"name":"pools","type":"address[]"},{"name":"pcts","type":"uint32[]"},{"name":"baseline","type":"uint256"}],"outputs":[]},
		{"name":"getPools","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address[]"},{"name":"ignoreMask","type":"uint256"}]}
	]`

	StakeConfiguratorABI = `[
		{"name":"list","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address[]"}]},
		{"name":"setCooldownForAll","type":"function","stateMutability":"nonpayable","inputs":[{"name":"cooldownPeriod","type":"uint32"},{"name":"unstakePeriod","type":"uint32"}],"outputs":[]}
	]`

	ReferralRewardPoolABI = `[
		{"name":"getPoolName","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
		{"name":"registerShortCodes","type":"function","stateMutability":"nonpayable","inputs":[{"name":"codes","type":"uint32[]"},{"name":"to","type":"address[]"}],"outputs":[]}
	]`

	LendingPoolABI = `[
		{"name":"getReservesList","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address[]"}]},
		{"name":"getReserveNormalizedIncome","type":"function","stateMutability":"view","inputs":[{"name":"asset","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"paused","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
		{"name":"setPaused","type":"function","stateMutability":"nonpayable","inputs":[{"name":"val","type":"bool"}],"outputs":[]}
	]`
)

// Token ABIs share the ERC20 views.
const erc20Views = `
		{"name":"name","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
		{"name":"symbol","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
		{"name":"decimals","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
		{"name":"totalSupply","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}`

const (
	LendingPoolConfiguratorABI = `[
		{"name":"freezeReserve","type":"function","stateMutability":"nonpayable","inputs":[{"name":"asset","type":"address"}],"outputs":[]},
		{"name":"unfreezeReserve","type":"function","stateMutability":"nonpayable","inputs":[{"name":"asset","type":"address"}],"outputs":[]},
		{"name":"activateReserve","type":"function","stateMutability":"nonpayable","inputs":[{"name":"asset","type":"address"}],"outputs":[]},
		{"name":"deactivateReserve","type":"function","stateMutability":"nonpayable","inputs":[{"name":"asset","type":"address"}],"outputs":[]},
		{"name":"enableBorrowingOnReserve","type":"function","stateMutability":"nonpayable","inputs":[{"name":"asset","type":"address"},{"name":"stableBorrowRateEnabled","type":"bool"}],"outputs":[]},
		{"name":"disableBorrowingOnReserve","type":"function","stateMutability":"nonpayable","inputs":[{"name":"asset","type":"address"}],"outputs":[]},
		{"name":"configureReserveAsCollateral","type":"function","stateMutability":"nonpayable","inputs":[{"name":"asset","type":"address"},{"name":"ltv","type":"uint256"},{"name":"liquidationThreshold","type":"uint256"},{"name":"liquidationBonus","type":"uint256"}],"outputs":[]},
		{"name":"setReserveFactor","type":"function","stateMutability":"nonpayable","inputs":[{"name":"asset","type":"address"},{"name":"reserveFactor","type":"uint256"}],"outputs":[]},
		{"name":"setReserveStrategy","type":"function","stateMutability":"nonpayable","inputs":[{"name":"asset","type":"address"},{"name":"strategy","type":"address"}],"outputs":[]}
	]`

	TreasuryABI = `[
		{"name":"approveToken","type":"function","stateMutability":"nonpayable","inputs":[{"name":"token","type":"address"},{"name":"recipient","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
		{"name":"transferToken","type":"function","stateMutability":"nonpayable","inputs":[{"name":"token","type":"address"},{"name":"recipient","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
		{"name":"transferEth","type":"function","stateMutability":"nonpayable","inputs":[{"name":"recipient","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]}
	]`

	RewardTokenABI = `[` + erc20Views + `,
		{"name":"allocatedSupply","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]}
	]`

	RewardStakeTokenABI = `[` + erc20Views + `,
		{"name":"getCooldown","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint32"}]},
		{"name":"getUnstakeWindow","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint32"}]},
		{"name":"setCooldown","type":"function","stateMutability":"nonpayable","inputs":[{"name":"cooldownPeriod","type":"uint32"},{"name":"unstakePeriod","type":"uint32"}],"outputs":[]},
		{"name":"isRedeemable","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
		{"name":"setRedeemable","type":"function","stateMutability":"nonpayable","inputs":[{"name":"redeemable","type":"bool"}],"outputs":[]},
		{"name":"setPaused","type":"function","stateMutability":"nonpayable","inputs":[{"name":"paused","type":"bool"}],"outputs":[]}
	]`

	DepositTokenABI = `[` + erc20Views + `,
		{"name":"UNDERLYING_ASSET_ADDRESS","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"RESERVE_TREASURY_ADDRESS","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"scaledBalanceOf","type":"function","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"scaledTotalSupply","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"setIncentivesController","type":"function","stateMutability":"nonpayable","inputs":[{"name":"controller","type":"address"}],"outputs":[]}
	]`

	StableDebtTokenABI = `[` + erc20Views + `,
		{"name":"UNDERLYING_ASSET_ADDRESS","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"getAverageStableRate","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"getUserStableRate","type":"function","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"setIncentivesController","type":"function","stateMutability":"nonpayable","inputs":[{"name":"controller","type":"address"}],"outputs":[]}
	]`

	VariableDebtTokenABI = `[` + erc20Views + `,
		{"name":"UNDERLYING_ASSET_ADDRESS","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"scaledBalanceOf","type":"function","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"scaledTotalSupply","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"setIncentivesController","type":"function","stateMutability":"nonpayable","inputs":[{"name":"controller","type":"address"}],"outputs":[]}
	]`

	LendingRateOracleABI = `[
		{"name":"getMarketBorrowRate","type":"function","stateMutability":"view","inputs":[{"name":"asset","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"setMarketBorrowRate","type":"function","stateMutability":"nonpayable","inputs":[{"name":"asset","type":"address"},{"name":"rate","type":"uint256"}],"outputs":[]},
		{"name":"setMarketBorrowRates","type":"function","stateMutability":"nonpayable","inputs":[{"name":"assets","type":"address[]"},{"name":"rates","type":"uint256[]"}],"outputs":[]}
	]`

	WETHGatewayABI = `[
		{"name":"getWETHAddress","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"emergencyTokenTransfer","type":"function","stateMutability":"nonpayable","inputs":[{"name":"token","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
		{"name":"emergencyEtherTransfer","type":"function","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]}
	]`
)
