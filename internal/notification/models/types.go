package models

// Type names one catalogued domain event kind. The string values are wire
// and storage values; renaming one is a breaking change for every consumer
// filtering or subscribing by type.
type Type string

// Follow family.
const (
	TypeNouveauFollower Type = "NOUVEAU_FOLLOWER"
	TypeFollowerRetire  Type = "FOLLOWER_RETIRE"
)

// Abonnement family.
const (
	TypeAbonnementDemande   Type = "ABONNEMENT_DEMANDE"
	TypeAbonnementAccepte   Type = "ABONNEMENT_ACCEPTE"
	TypeAbonnementRejete    Type = "ABONNEMENT_REJETE"
	TypeAbonnementAnnule    Type = "ABONNEMENT_ANNULE"
	TypeAbonnementExpire    Type = "ABONNEMENT_EXPIRE"
	TypeAbonnementRenouvele Type = "ABONNEMENT_RENOUVELE"
)

// Partenariat family.
const (
	TypePagePartenariatCreee           Type = "PAGE_PARTENARIAT_CREEE"
	TypePagePartenariatModifiee        Type = "PAGE_PARTENARIAT_MODIFIEE"
	TypeInformationPartenaireAjoutee   Type = "INFORMATION_PARTENAIRE_AJOUTEE"
	TypeInformationPartenaireModifiee  Type = "INFORMATION_PARTENAIRE_MODIFIEE"
	TypeInformationPartenaireSupprimee Type = "INFORMATION_PARTENAIRE_SUPPRIMEE"
)

// Transaction family.
const (
	TypeTransactionEnAttente Type = "TRANSACTION_EN_ATTENTE"
	TypeTransactionValidee   Type = "TRANSACTION_VALIDEE"
	TypeTransactionRejetee   Type = "TRANSACTION_REJETEE"
	TypeTransactionModifiee  Type = "TRANSACTION_MODIFIEE"
	TypeTransactionSupprimee Type = "TRANSACTION_SUPPRIMEE"
)

// Messagerie family.
const (
	TypeNouveauMessage   Type = "NOUVEAU_MESSAGE"
	TypeMessageGroupe    Type = "MESSAGE_GROUPE"
	TypeGroupeInvitation Type = "GROUPE_INVITATION"
	TypeGroupeRejoint    Type = "GROUPE_REJOINT"
	TypeGroupeQuitte     Type = "GROUPE_QUITTE"
	TypeGroupeSupprime   Type = "GROUPE_SUPPRIME"
)

// Post family.
const (
	TypePostLiked          Type = "POST_LIKED"
	TypePostCommented      Type = "POST_COMMENTED"
	TypePostPartage        Type = "POST_PARTAGE"
	TypeCommentaireLiked   Type = "COMMENTAIRE_LIKED"
	TypeCommentaireRepondu Type = "COMMENTAIRE_REPONDU"
	TypeMention            Type = "MENTION"
)

// System family.
const (
	TypeSystem            Type = "SYSTEM"
	TypeSystemMaintenance Type = "SYSTEM_MAINTENANCE"
	TypeBienvenue         Type = "BIENVENUE"
	TypeCompteVerifie     Type = "COMPTE_VERIFIE"
	TypeMotDePasseChange  Type = "MOT_DE_PASSE_CHANGE"
	TypeProfilVisite      Type = "PROFIL_VISITE"
	TypeRappelPaiement    Type = "RAPPEL_PAIEMENT"
	TypePaiementRecu      Type = "PAIEMENT_RECU"
	TypePaiementEchoue    Type = "PAIEMENT_ECHOUE"
	TypeDocumentPartage   Type = "DOCUMENT_PARTAGE"
)

// AllTypes returns the full catalog in a stable order. Preference listings
// with defaults iterate this; a type missing here is a type the owner can
// never see in settings.
func AllTypes() []Type {
	return []Type{
		TypeNouveauFollower,
		TypeFollowerRetire,
		TypeAbonnementDemande,
		TypeAbonnementAccepte,
		TypeAbonnementRejete,
		TypeAbonnementAnnule,
		TypeAbonnementExpire,
		TypeAbonnementRenouvele,
		TypePagePartenariatCreee,
		TypePagePartenariatModifiee,
		TypeInformationPartenaireAjoutee,
		TypeInformationPartenaireModifiee,
		TypeInformationPartenaireSupprimee,
		TypeTransactionEnAttente,
		TypeTransactionValidee,
		TypeTransactionRejetee,
		TypeTransactionModifiee,
		TypeTransactionSupprimee,
		TypeNouveauMessage,
		TypeMessageGroupe,
		TypeGroupeInvitation,
		TypeGroupeRejoint,
		TypeGroupeQuitte,
		TypeGroupeSupprime,
		TypePostLiked,
		TypePostCommented,
		TypePostPartage,
		TypeCommentaireLiked,
		TypeCommentaireRepondu,
		TypeMention,
		TypeSystem,
		TypeSystemMaintenance,
		TypeBienvenue,
		TypeCompteVerifie,
		TypeMotDePasseChange,
		TypeProfilVisite,
		TypeRappelPaiement,
		TypePaiementRecu,
		TypePaiementEchoue,
		TypeDocumentPartage,
	}
}

// Valid reports whether t belongs to the catalog.
func (t Type) Valid() bool {
	for _, known := range AllTypes() {
		if t == known {
			return true
		}
	}
	return false
}
