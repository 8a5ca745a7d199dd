package scrape

import (
	"jobtier-engine/internal/config"
	"jobtier-engine/internal/domain"
)

// Built-in secondary rosters: employers worth scraping that are usually not
// present in any tier roster. A non-empty companies list in config replaces
// the built-in list for that platform.
var (
	DefaultGreenhouseCompanies = []config.Company{
		{Slug: "databricks", ID: "DATABRICKS_INC", Name: "Databricks"},
		{Slug: "cloudflare", ID: "CLOUDFLARE_INC", Name: "Cloudflare"},
		{Slug: "doordashusa", ID: "DOORDASH_INC", Name: "DoorDash"},
		{Slug: "stripe", ID: "STRIPE_INC", Name: "Stripe"},
		{Slug: "waymo", ID: "WAYMO_LLC", Name: "Waymo"},
		{Slug: "datadog", ID: "DATADOG_INC", Name: "Datadog"},
		{Slug: "mongodb", ID: "MONGODB_INC", Name: "MongoDB"},
		{Slug: "purestorage", ID: "PURE_STORAGE_INC", Name: "Pure Storage"},
		{Slug: "coinbase", ID: "COINBASE_INC", Name: "Coinbase"},
		{Slug: "zscaler", ID: "ZSCALER_INC", Name: "Zscaler"},
		{Slug: "hubspotjobs", ID: "HUBSPOT_INC", Name: "HubSpot"},
		{Slug: "roblox", ID: "ROBLOX_CORPORATION", Name: "Roblox"},
		{Slug: "airbnb", ID: "AIRBNB_INC", Name: "Airbnb"},
		{Slug: "roku", ID: "ROKU_INC", Name: "Roku"},
		{Slug: "rubrik", ID: "RUBRIK_INC", Name: "Rubrik"},
		{Slug: "dropbox", ID: "DROPBOX_INC", Name: "Dropbox"},
		{Slug: "lyft", ID: "LYFT_INC", Name: "Lyft"},
		{Slug: "pinterest", ID: "PINTEREST_INC", Name: "Pinterest"},
		{Slug: "robinhood", ID: "ROBINHOOD_MARKETS_INC", Name: "Robinhood"},
		{Slug: "twilio", ID: "TWILIO_INC", Name: "Twilio"},
		{Slug: "godaddy", ID: "GODADDY_COM_LLC", Name: "GoDaddy"},
		{Slug: "socialfinance", ID: "SOCIAL_FINANCE_LLC", Name: "SoFi"},
		{Slug: "indeed", ID: "INDEED_INC", Name: "Indeed"},
		{Slug: "uber", ID: "UBER_TECHNOLOGIES_INC", Name: "Uber"},
		{Slug: "reddit", ID: "REDDIT_INC", Name: "Reddit"},
		{Slug: "figma", ID: "FIGMA_INC", Name: "Figma"},
		{Slug: "discord", ID: "DISCORD_INC", Name: "Discord"},
		{Slug: "instacart", ID: "INSTACART_INC", Name: "Instacart"},
		{Slug: "squarespace", ID: "SQUARESPACE_INC", Name: "Squarespace"},
		{Slug: "anthropic", ID: "ANTHROPIC_INC", Name: "Anthropic"},
	}

	DefaultLeverCompanies = []config.Company{
		{Slug: "palantir", ID: "PALANTIR_TECHNOLOGIES_INC", Name: "Palantir"},
		{Slug: "spotify", ID: "SPOTIFY_USA_INC", Name: "Spotify"},
		{Slug: "capital", ID: "CAPITAL_ONE_NATIONAL_ASSOCIATION", Name: "Capital One"},
		{Slug: "metlife", ID: "METLIFE_GROUP_INC", Name: "MetLife"},
		{Slug: "genesis", ID: "GENESIS_CORP", Name: "Genesis Corp"},
		{Slug: "atlassian", ID: "ATLASSIAN_US_INC", Name: "Atlassian"},
	}

	DefaultAshbyCompanies = []config.Company{
		{Slug: "snowflake", ID: "SNOWFLAKE_INC", Name: "Snowflake"},
		{Slug: "confluent", ID: "CONFLUENT_INC", Name: "Confluent"},
		{Slug: "cas", ID: "CITADEL_AMERICAS_SERVICES_LLC", Name: "Citadel"},
		{Slug: "tiger", ID: "TIGER_ANALYTICS_INC", Name: "Tiger Analytics"},
		{Slug: "openai", ID: "OPENAI", Name: "OpenAI"},
		{Slug: "replicate", ID: "REPLICATE", Name: "Replicate"},
		{Slug: "perplexity", ID: "PERPLEXITY", Name: "Perplexity"},
		{Slug: "character", ID: "CHARACTER_AI", Name: "Character.ai"},
	}

	DefaultWorkdayCompanies = []config.Company{
		{Slug: "salesforce.wd12.myworkdayjobs.com/External_Career_Site", ID: "SALESFORCE_INC_", Name: "Salesforce"},
		{Slug: "adobe.wd5.myworkdayjobs.com/external_experienced", ID: "ADOBE_INC_", Name: "Adobe"},
		{Slug: "nvidia.wd5.myworkdayjobs.com/NVIDIAExternalCareerSite", ID: "NVIDIA_CORPORATION", Name: "NVIDIA"},
		{Slug: "paypal.wd1.myworkdayjobs.com/jobs", ID: "PAYPAL_INC_", Name: "PayPal"},
		{Slug: "qualcomm.wd5.myworkdayjobs.com/External", ID: "QUALCOMM", Name: "Qualcomm"},
	}
)

// SecondaryRoster builds the hard-coded roster for every enabled platform,
// in platform order.
func SecondaryRoster(src config.SourcesConfig) []RosterEntry {
	var out []RosterEntry
	add := func(p domain.Platform, s config.Source, defaults []config.Company) {
		if !s.Enabled {
			return
		}
		list := s.Companies
		if len(list) == 0 {
			list = defaults
		}
		for _, c := range list {
			out = append(out, RosterEntry{Platform: p, Token: c.Slug, CompanyID: c.ID, CompanyName: c.Name})
		}
	}
	add(domain.PlatformGreenhouse, src.Greenhouse, DefaultGreenhouseCompanies)
	add(domain.PlatformLever, src.Lever, DefaultLeverCompanies)
	add(domain.PlatformAshby, src.Ashby, DefaultAshbyCompanies)
	add(domain.PlatformWorkday, src.Workday, DefaultWorkdayCompanies)
	return out
}

// EnabledPlatforms maps each platform to its enabled flag.
func EnabledPlatforms(src config.SourcesConfig) map[domain.Platform]bool {
	return map[domain.Platform]bool{
		domain.PlatformGreenhouse: src.Greenhouse.Enabled,
		domain.PlatformLever:      src.Lever.Enabled,
		domain.PlatformAshby:      src.Ashby.Enabled,
		domain.PlatformWorkday:    src.Workday.Enabled,
	}
}
