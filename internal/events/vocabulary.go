package events

// Исходящие события
const (
	EventAuthenticate  = "authenticate"
	EventJoinChat      = "joinChat"
	EventLeaveChat     = "leaveChat"
	EventSendMessage   = "sendMessage"
	EventJoinIncident  = "joinIncident"
	EventLeaveIncident = "leaveIncident"
	EventJoinDuty      = "joinDuty"
	EventLeaveDuty     = "leaveDuty"
)

// Входящие события
const (
	EventAuthenticated        = "authenticated"
	EventAuthenticationFailed = "authentication_failed"
	EventJoinedChat           = "joinedChat"
	EventJoinedIncident       = "joinedIncident"
	EventJoinedDuty           = "joinedDuty"
	EventReceiveMessage       = "receiveMessage"
	EventIncidentStatusUpdate = "incidentStatusUpdate"
	EventIncidentCreated      = "incidentCreated"
	EventIncidentUpdated      = "incidentStatusUpdated"
	EventIncidentDeleted      = "incidentDeleted"
	EventServerError          = "error"
)

// Category - класс доменных событий, на который подписываются обработчики
type Category string

const (
	CategoryConnection  Category = "connection"
	CategoryLocation    Category = "location"
	CategoryAuth        Category = "auth"
	CategoryJoin        Category = "join"
	CategoryStatus      Category = "status"
	CategoryChat        Category = "chat"
	CategoryFeed        Category = "feed"
	CategoryServerError Category = "server_error"
)

// Categories перечисляет все категории маршрутизатора
var Categories = []Category{
	CategoryConnection,
	CategoryLocation,
	CategoryAuth,
	CategoryJoin,
	CategoryStatus,
	CategoryChat,
	CategoryFeed,
	CategoryServerError,
}
