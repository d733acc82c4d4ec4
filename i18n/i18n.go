// Package i18n holds the site's message catalogue (French first, English
// second) and the language preference carried in request contexts.
package i18n

import (
	"context"
	"strings"
)

const DefaultLang = "fr"

var messages = map[string]map[string]string{
	"fr": {
		"required":                   "Requis",
		"invalid_email":              "Adresse e-mail invalide",
		"too_short":                  "Trop court",
		"too_long":                   "Trop long",
		"invalid_choice":             "Choix invalide",
		"out_of_range":               "Valeur hors limites",
		"password_mismatch":          "Les mots de passe ne correspondent pas",
		"invalid_credentials":        "Identifiants incorrects",
		"validation_failed":          "Certains champs sont invalides",
		"already_exists":             "Cette ressource existe déjà",
		"not_found":                  "Document introuvable ou accès non autorisé",
		"invalid_share_link":         "Lien invalide ou expiré",
		"unavailable":                "Service temporairement indisponible",
		"forbidden":                  "Accès refusé",
		"too_many_requests":          "Trop de requêtes, réessayez plus tard",
		"internal_error":             "Une erreur est survenue",
		"profile_updated":            "Profil mis à jour",
		"password_changed":           "Mot de passe modifié",
		"share_created":              "Lien de partage créé",
		"invite_sent":                "Invitation envoyée",
		"invite_mail_failed":         "Collaborateur ajouté, mais l'e-mail d'invitation n'a pas pu être envoyé",
		"collaborator_removed":       "Collaborateur supprimé",
		"client_created":             "Client créé",
		"client_deleted":             "Client supprimé",
		"document_uploaded":          "Document envoyé",
		"document_deleted":           "Document supprimé",
		"status_updated":             "Statut mis à jour",
		"project_created":            "Projet créé",
		"message_sent":               "Message envoyé, merci !",
		"newsletter_ok":              "Inscription à la newsletter confirmée",
		"quote_received":             "Demande de devis reçue",
		"self_invite":                "Vous ne pouvez pas vous inviter vous-même",
		"invalid_url":                "Adresse web invalide (http:// ou https://)",
		"unknown_client":             "Client inconnu",
		"before_start":               "La date de fin précède la date de début",
		"too_large":                  "Fichier trop volumineux (20 Mo maximum)",
		"invalid_json":               "Corps JSON invalide",
		"invalid_form":               "Formulaire invalide",
		"account_created":            "Compte créé, bienvenue !",
		"message_read":               "Message marqué comme lu",
		"notification_read":          "Notification marquée comme lue",
		"nav.admin":                  "Administration",
		"nav.dashboard":              "Tableau de bord",
		"nav.documents":              "Documents",
		"nav.notifications":          "Notifications",
		"nav.projects":               "Projets",
		"nav.profile":                "Profil",
		"nav.collaborators":          "Collaborateurs",
		"nav.quotes":                 "Devis",
		"nav.clients":                "Clients",
		"nav.messages":               "Messages",
		"nav.newsletter":             "Newsletter",
		"nav.contact":                "Contact",
		"nav.home":                   "Accueil",
		"nav.services":               "Services",
		"nav.portfolio":              "Réalisations",
		"nav.blog":                   "Blog",
		"nav.faq":                    "FAQ",
		"nav.team":                   "Équipe",
		"nav.quote":                  "Demander un devis",
		"nav.client_area":            "Espace client",
		"nav.logout":                 "Déconnexion",
		"action.back":                "Retour",
		"action.confirm_delete":      "Supprimer définitivement ?",
		"action.create":              "Créer",
		"action.delete":              "Supprimer",
		"action.download":            "Télécharger",
		"action.filter":              "Filtrer",
		"action.invite":              "Inviter",
		"action.login":               "Se connecter",
		"action.mark_read":           "Marquer comme lu",
		"action.new_client":          "Nouveau client",
		"action.new_project":         "Nouveau projet",
		"action.next":                "Suivant",
		"action.save":                "Enregistrer",
		"action.search":              "Rechercher",
		"action.send":                "Envoyer",
		"action.signup":              "Créer un compte",
		"action.upload":              "Envoyer un document",
		"blog.empty":                 "Aucun article pour le moment",
		"documents.empty":            "Aucun document pour le moment",
		"notifications.empty":        "Aucune notification",
		"field.adresse":              "Adresse",
		"field.client":               "Client",
		"field.code_postal":          "Code postal",
		"field.current_password":     "Mot de passe actuel",
		"field.date":                 "Date",
		"field.date_debut":           "Début",
		"field.date_fin":             "Fin",
		"field.email":                "E-mail",
		"field.entreprise":           "Entreprise",
		"field.fichier":              "Fichier",
		"field.message":              "Message",
		"field.montant":              "Montant",
		"field.new_password":         "Nouveau mot de passe",
		"field.nom":                  "Nom",
		"field.nom_contact":          "Contact",
		"field.password":             "Mot de passe",
		"field.password_confirm":     "Confirmation du mot de passe",
		"field.pays":                 "Pays",
		"field.periode":              "Période",
		"field.site_web":             "Site web",
		"field.statut":               "Statut",
		"field.sujet":                "Sujet",
		"field.telephone":            "Téléphone",
		"field.titre":                "Titre",
		"field.type":                 "Type",
		"field.type_contrat":         "Type de contrat",
		"field.username":             "Identifiant",
		"field.ville":                "Ville",
		"home.title":                 "Des sites web qui travaillent pour vous",
		"home.tagline":               "Design, développement et référencement pour les TPE et PME.",
		"newsletter.subscribe":       "S'abonner",
		"quote.budget":               "Budget",
		"quote.delai":                "Délai",
		"quote.description":          "Description du projet",
		"quote.reference":            "Référence",
		"quote.services":             "Prestations",
		"quote.step":                 "Étape",
		"quote.type_projet":          "Type de projet",
		"share.consulted":            "Consulté le",
		"share.copy_now":             "Copiez ce lien maintenant, il ne sera plus affiché.",
		"share.create":               "Créer un lien",
		"share.days":                 "Validité (jours)",
		"share.expires":              "Expire le",
		"share.title":                "Partager",
		"stats.latest_quotes":        "Derniers devis",
		"stats.new_quotes":           "Nouveaux devis",
		"stats.unread_messages":      "Messages non lus",
		"stats.unread_notifications": "Notifications non lues",
		"opt.site_vitrine":           "Site vitrine",
		"opt.e_commerce":             "E-commerce",
		"opt.application_web":        "Application web",
		"opt.refonte":                "Refonte",
		"opt.autre":                  "Autre",
		"opt.design":                 "Design",
		"opt.developpement":          "Développement",
		"opt.seo":                    "Référencement",
		"opt.hebergement":            "Hébergement",
		"opt.maintenance":            "Maintenance",
		"opt.redaction":              "Rédaction",
		"opt.moins_5k":               "Moins de 5 000 €",
		"opt.5k_10k":                 "5 000 à 10 000 €",
		"opt.10k_20k":                "10 000 à 20 000 €",
		"opt.plus_20k":               "Plus de 20 000 €",
		"opt.a_definir":              "À définir",
		"opt.urgent":                 "Urgent",
		"opt.1_mois":                 "Sous un mois",
		"opt.3_mois":                 "Sous trois mois",
		"opt.6_mois":                 "Sous six mois",
		"opt.flexible":               "Flexible",
		"opt.nouveau":                "Nouveau",
		"opt.en_cours":               "En cours",
		"opt.accepte":                "Accepté",
		"opt.refuse":                 "Refusé",
		"opt.brouillon":              "Brouillon",
		"opt.envoye":                 "Envoyé",
		"opt.signe":                  "Signé",
		"opt.archive":                "Archivé",
		"opt.termine":                "Terminé",
		"opt.en_pause":               "En pause",
		"opt.en_attente":             "En attente",
		"opt.acceptee":               "Acceptée",
		"opt.devis":                  "Devis",
		"opt.facture":                "Facture",
		"opt.contrat":                "Contrat",
		"opt.cahier_des_charges":     "Cahier des charges",
		"opt.maquette":               "Maquette",
	},
	"en": {
		"required":                   "Required",
		"invalid_email":              "Invalid email address",
		"too_short":                  "Too short",
		"too_long":                   "Too long",
		"invalid_choice":             "Invalid choice",
		"out_of_range":               "Out of range",
		"password_mismatch":          "Passwords do not match",
		"invalid_credentials":        "Invalid credentials",
		"validation_failed":          "Some fields are invalid",
		"already_exists":             "Already exists",
		"not_found":                  "Document not found or access denied",
		"invalid_share_link":         "Invalid or expired link",
		"unavailable":                "Service temporarily unavailable",
		"forbidden":                  "Forbidden",
		"too_many_requests":          "Too many requests, try again later",
		"internal_error":             "Something went wrong",
		"profile_updated":            "Profile updated",
		"password_changed":           "Password changed",
		"share_created":              "Share link created",
		"invite_sent":                "Invitation sent",
		"invite_mail_failed":         "Collaborator added but the invitation email could not be sent",
		"collaborator_removed":       "Collaborator removed",
		"client_created":             "Client created",
		"client_deleted":             "Client deleted",
		"document_uploaded":          "Document uploaded",
		"document_deleted":           "Document deleted",
		"status_updated":             "Status updated",
		"project_created":            "Project created",
		"message_sent":               "Message sent, thank you!",
		"newsletter_ok":              "Newsletter subscription confirmed",
		"quote_received":             "Quote request received",
		"self_invite":                "You cannot invite yourself",
		"invalid_url":                "Invalid web address (http:// or https://)",
		"unknown_client":             "Unknown client",
		"before_start":               "End date is before start date",
		"too_large":                  "File too large (20 MB max)",
		"invalid_json":               "Invalid JSON body",
		"invalid_form":               "Invalid form",
		"account_created":            "Account created, welcome!",
		"message_read":               "Message marked as read",
		"notification_read":          "Notification marked as read",
		"nav.admin":                  "Admin",
		"nav.dashboard":              "Dashboard",
		"nav.documents":              "Documents",
		"nav.notifications":          "Notifications",
		"nav.projects":               "Projects",
		"nav.profile":                "Profile",
		"nav.collaborators":          "Collaborators",
		"nav.quotes":                 "Quotes",
		"nav.clients":                "Clients",
		"nav.messages":               "Messages",
		"nav.newsletter":             "Newsletter",
		"nav.contact":                "Contact",
		"nav.home":                   "Home",
		"nav.services":               "Services",
		"nav.portfolio":              "Work",
		"nav.blog":                   "Blog",
		"nav.faq":                    "FAQ",
		"nav.team":                   "Team",
		"nav.quote":                  "Request a quote",
		"nav.client_area":            "Client area",
		"nav.logout":                 "Log out",
		"opt.design":                 "Design",
		"opt.maintenance":            "Maintenance",
		"opt.urgent":                 "Urgent",
		"opt.flexible":               "Flexible",
		"action.back":                "Back",
		"action.confirm_delete":      "Delete permanently?",
		"action.create":              "Create",
		"action.delete":              "Delete",
		"action.download":            "Download",
		"action.filter":              "Filter",
		"action.invite":              "Invite",
		"action.login":               "Log in",
		"action.mark_read":           "Mark as read",
		"action.new_client":          "New client",
		"action.new_project":         "New project",
		"action.next":                "Next",
		"action.save":                "Save",
		"action.search":              "Search",
		"action.send":                "Send",
		"action.signup":              "Create an account",
		"action.upload":              "Upload a document",
		"blog.empty":                 "No posts yet",
		"documents.empty":            "No documents yet",
		"notifications.empty":        "No notifications",
		"field.adresse":              "Address",
		"field.client":               "Client",
		"field.code_postal":          "Postcode",
		"field.current_password":     "Current password",
		"field.date":                 "Date",
		"field.date_debut":           "Start",
		"field.date_fin":             "End",
		"field.email":                "Email",
		"field.entreprise":           "Company",
		"field.fichier":              "File",
		"field.message":              "Message",
		"field.montant":              "Amount",
		"field.new_password":         "New password",
		"field.nom":                  "Name",
		"field.nom_contact":          "Contact",
		"field.password":             "Password",
		"field.password_confirm":     "Confirm password",
		"field.pays":                 "Country",
		"field.periode":              "Period",
		"field.site_web":             "Website",
		"field.statut":               "Status",
		"field.sujet":                "Subject",
		"field.telephone":            "Phone",
		"field.titre":                "Title",
		"field.type":                 "Type",
		"field.type_contrat":         "Contract type",
		"field.username":             "Username",
		"field.ville":                "City",
		"home.title":                 "Websites that work for you",
		"home.tagline":               "Design, development and SEO for small businesses.",
		"newsletter.subscribe":       "Subscribe",
		"quote.budget":               "Budget",
		"quote.delai":                "Timeline",
		"quote.description":          "Project description",
		"quote.reference":            "Reference",
		"quote.services":             "Services",
		"quote.step":                 "Step",
		"quote.type_projet":          "Project type",
		"share.consulted":            "Opened on",
		"share.copy_now":             "Copy this link now, it will not be shown again.",
		"share.create":               "Create a link",
		"share.days":                 "Valid for (days)",
		"share.expires":              "Expires on",
		"share.title":                "Share",
		"stats.latest_quotes":        "Latest quotes",
		"stats.new_quotes":           "New quotes",
		"stats.unread_messages":      "Unread messages",
		"stats.unread_notifications": "Unread notifications",
		"opt.site_vitrine":           "Showcase site",
		"opt.e_commerce":             "Online shop",
		"opt.application_web":        "Web application",
		"opt.refonte":                "Redesign",
		"opt.autre":                  "Other",
		"opt.developpement":          "Development",
		"opt.seo":                    "SEO",
		"opt.hebergement":            "Hosting",
		"opt.redaction":              "Copywriting",
		"opt.moins_5k":               "Under €5,000",
		"opt.5k_10k":                 "€5,000 to €10,000",
		"opt.10k_20k":                "€10,000 to €20,000",
		"opt.plus_20k":               "Over €20,000",
		"opt.a_definir":              "To be defined",
		"opt.1_mois":                 "Within a month",
		"opt.3_mois":                 "Within three months",
		"opt.6_mois":                 "Within six months",
		"opt.nouveau":                "New",
		"opt.en_cours":               "In progress",
		"opt.accepte":                "Accepted",
		"opt.refuse":                 "Declined",
		"opt.brouillon":              "Draft",
		"opt.envoye":                 "Sent",
		"opt.signe":                  "Signed",
		"opt.archive":                "Archived",
		"opt.termine":                "Done",
		"opt.en_pause":               "On hold",
		"opt.en_attente":             "Pending",
		"opt.acceptee":               "Accepted",
		"opt.devis":                  "Quote",
		"opt.facture":                "Invoice",
		"opt.contrat":                "Contract",
		"opt.cahier_des_charges":     "Requirements",
		"opt.maquette":               "Mockup",
	},
}

// T translates code into lang, falling back to French and then to the code itself.
func T(lang, code string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := messages[DefaultLang][code]; ok {
		return s
	}
	return code
}

// Supported reports whether lang has a catalogue.
func Supported(lang string) bool {
	_, ok := messages[lang]
	return ok
}

// DetectLanguage picks "en" when the first Accept-Language tag is English,
// French otherwise.
func DetectLanguage(acceptLanguage string) string {
	first, _, _ := strings.Cut(acceptLanguage, ",")
	first, _, _ = strings.Cut(strings.TrimSpace(first), ";")
	base, _, _ := strings.Cut(strings.ToLower(first), "-")
	if base == "en" {
		return "en"
	}
	return DefaultLang
}

type langKey struct{}

func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

func LangFromContext(ctx context.Context) string {
	if l, ok := ctx.Value(langKey{}).(string); ok && l != "" {
		return l
	}
	return DefaultLang
}
