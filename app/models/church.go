package models

// ChurchInfo is the static identity block shown on the public site.
type ChurchInfo struct {
	Name                 string `json:"name"`
	Location             string `json:"location"`
	Address              string `json:"address"`
	PastorName           string `json:"pastor_name"`
	PastorPhone          string `json:"pastor_phone"`
	PastorEmail          string `json:"pastor_email"`
	PastorAlternateEmail string `json:"pastor_alternate_email"`
}

// ChurchService is one entry of the weekly service schedule.
type ChurchService struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Time        string `json:"time"`
	Day         string `json:"day"`
	Description string `json:"description"`
}

func DefaultChurchInfo() ChurchInfo {
	return ChurchInfo{
		Name:                 "Iglesia Bautista Yaguita de Pastor",
		Location:             "Santiago, République Dominicaine",
		Address:              "Avenida Nunez de Carcerez #9, Santiago RD",
		PastorName:           "Pasteur Smith Dumont",
		PastorPhone:          "+1 (829) 295-5254",
		PastorEmail:          "ibautistayaguitadelpastor@gmail.com",
		PastorAlternateEmail: "Smithdumont_3@hotmail.com",
	}
}

func DefaultChurchServices() []ChurchService {
	return []ChurchService{
		{ID: 1, Name: "Culte du Dimanche Matin", Time: "09:00 AM", Day: "Dimanche", Description: "Service principal avec prédication et louange"},
		{ID: 2, Name: "École du Dimanche", Time: "08:00 AM", Day: "Dimanche", Description: "Étude biblique pour tous les âges"},
		{ID: 3, Name: "Culte du Mercredi", Time: "19:00 PM", Day: "Mercredi", Description: "Service de prière et étude biblique"},
		{ID: 4, Name: "Culte des Jeunes", Time: "18:00 PM", Day: "Vendredi", Description: "Service dédié aux jeunes et adolescents"},
	}
}
