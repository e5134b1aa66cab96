package normalize

// videoCategories maps YouTube category ids to their display names.
var videoCategories = map[string]string{
	"1":  "Film & Animation",
	"2":  "Autos & Vehicles",
	"10": "Music",
	"15": "Pets & Animals",
	"17": "Sports",
	"19": "Travel & Events",
	"20": "Gaming",
	"22": "People & Blogs",
	"23": "Comedy",
	"24": "Entertainment",
	"25": "News & Politics",
	"26": "Howto & Style",
	"27": "Education",
	"28": "Science & Technology",
	"29": "Nonprofits & Activism",
}

// CategoryName resolves a known category id to its name. Anything else,
// including names that were already resolved, is returned unchanged.
func CategoryName(raw string) string {
	if name, ok := videoCategories[raw]; ok {
		return name
	}
	return raw
}
