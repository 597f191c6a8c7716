package localstore

import "tovakustatus-backend/internal/model"

const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
)

// DefaultSeed is written by Initialize on first run.
func DefaultSeed() map[string]any {
	return map[string]any{
		KeyTalents:     seedTalents(),
		KeyProjects:    seedProjects(),
		KeyEvents:      seedEvents(),
		KeyBlogPosts:   seedBlogPosts(),
		KeySubscribers: []model.NewsletterSubscriber{},
		KeyVisitors:    []model.Visitor{},
		KeySettings:    DefaultSettings(),
	}
}

func DefaultSettings() model.SiteSettings {
	return model.SiteSettings{
		SiteName:     "Tova ku Status",
		Tagline:      "Showcasing the talent of young people",
		ContactEmail: "info@tovakustatus.org",
		ContactPhone: "+255 700 000 000",
		Address:      "Dar es Salaam, Tanzania",
		SocialLinks: map[string]string{
			"facebook":  "https://facebook.com/tovakustatus",
			"instagram": "https://instagram.com/tovakustatus",
			"youtube":   "https://youtube.com/@tovakustatus",
		},
	}
}

func seedTalents() []model.Talent {
	return []model.Talent{
		{
			ID:          "1",
			Name:        "Amani Joseph",
			Age:         16,
			TalentType:  model.TalentMusic,
			Description: "Self-taught guitarist writing songs about life in the city.",
			FullStory:   "Amani started playing on a borrowed guitar at twelve and now performs at community events every month.",
			ImageURL:    "/images/talents/amani.jpg",
			Status:      "Active",
			Views:       120,
		},
		{
			ID:          "2",
			Name:        "Neema Said",
			Age:         14,
			TalentType:  model.TalentSports,
			Description: "Sprinter who holds the regional under-15 record.",
			ImageURL:    "/images/talents/neema.jpg",
			Status:      "Active",
			Views:       87,
		},
		{
			ID:          "3",
			Name:        "Baraka Mushi",
			Age:         17,
			TalentType:  model.TalentArt,
			Description: "Painter turning recycled materials into murals.",
			ImageURL:    "/images/talents/baraka.jpg",
			Status:      "Featured",
			Views:       203,
		},
	}
}

func seedProjects() []model.Project {
	return []model.Project{
		{
			ID:              "1",
			Title:           "Music Mentorship Program",
			Description:     "Weekly sessions pairing young musicians with professionals.",
			FullDescription: "Twelve weeks of instrument lessons, songwriting workshops and a final showcase concert.",
			Date:            "January 2024",
			Participants:    45,
			ImageURL:        "/images/projects/music.jpg",
			Status:          "Ongoing",
		},
		{
			ID:           "2",
			Title:        "Community Sports League",
			Description:  "Football and athletics league for out-of-school youth.",
			Date:         "March 2024",
			Participants: 120,
			ImageURL:     "/images/projects/sports.jpg",
			Status:       "Completed",
		},
	}
}

func seedEvents() []model.Event {
	return []model.Event{
		{
			ID:          "1",
			Title:       "Youth Talent Showcase",
			Description: "An afternoon of music, dance and drama performances.",
			Date:        "June 15, 2024",
			Time:        "14:00 - 18:00",
			Location:    "Community Hall, Dar es Salaam",
			Status:      model.EventUpcoming,
			ImageURL:    "/images/events/showcase.jpg",
		},
		{
			ID:          "2",
			Title:       "Art Exhibition",
			Description: "Paintings and sculptures by young local artists.",
			Date:        "April 2, 2024",
			Time:        "10:00 - 16:00",
			Location:    "National Museum",
			Status:      model.EventPast,
			ImageURL:    "/images/events/art.jpg",
			VideoURL:    "https://youtube.com/watch?v=tovakustatus",
		},
	}
}

func seedBlogPosts() []model.BlogPost {
	return []model.BlogPost{
		{
			ID:       "1",
			Title:    "How Music Changed Amani's Life",
			Excerpt:  "From a borrowed guitar to the main stage.",
			Content:  "Amani's journey shows what a little support can unlock.",
			Author:   "Tova ku Status Team",
			Date:     "May 10, 2024",
			Category: "Stories",
			ImageURL: "/images/blog/amani.jpg",
			ReadTime: "4 min read",
			Views:    56,
		},
		{
			ID:       "2",
			Title:    "Announcing the 2024 Sports League",
			Excerpt:  "Registration for the community league is open.",
			Author:   "Program Coordinator",
			Date:     "February 20, 2024",
			Category: "News",
			ReadTime: "2 min read",
			Views:    31,
		},
	}
}
